package check

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChecker_ValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		setupFile   bool
		fileContent string
		expectValid bool
	}{
		{
			name:        "valid config file",
			setupFile:   true,
			fileContent: "port: 7247\ntheme: system\n",
			expectValid: true,
		},
		{
			name:        "no config file is still valid (defaults apply)",
			setupFile:   false,
			expectValid: true,
		},
		{
			name:        "invalid YAML",
			setupFile:   true,
			fileContent: "port: [not valid",
			expectValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if tt.setupFile {
				if err := os.WriteFile(path, []byte(tt.fileContent), 0644); err != nil {
					t.Fatalf("failed to write config file: %v", err)
				}
			}

			checker := NewChecker(path)
			err := checker.validateConfig()

			if tt.expectValid && err != nil {
				t.Errorf("validateConfig() unexpected error: %v", err)
			}
			if !tt.expectValid && err == nil {
				t.Error("validateConfig() expected an error, got nil")
			}
			if checker.report.Validation == nil {
				t.Fatal("expected a validation result to be recorded")
			}
			if checker.report.Validation.Valid != tt.expectValid {
				t.Errorf("Validation.Valid = %v, want %v", checker.report.Validation.Valid, tt.expectValid)
			}
		})
	}
}

func TestReachableProviderCount_NoneRegistered(t *testing.T) {
	// Without blank-importing any internal/provider/builtin package, the
	// registry is empty in this test binary.
	if count := reachableProviderCount(); count != 0 {
		t.Errorf("expected 0 reachable providers with an empty registry, got %d", count)
	}
}
