package check

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("config.yaml")
	if checker == nil {
		t.Fatal("NewChecker returned nil")
	}
	if checker.ConfigPath() != "config.yaml" {
		t.Errorf("expected configPath 'config.yaml', got %q", checker.ConfigPath())
	}
	if checker.report == nil {
		t.Error("report should be initialized")
	}
}

func TestFileExists(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "test_exists.txt")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if !fileExists(tmpFile) {
		t.Error("fileExists should return true for existing file")
	}
	if fileExists("/non/existent/file.txt") {
		t.Error("fileExists should return false for non-existing file")
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "subdir")
	testFile := filepath.Join(tmpDir, "test.txt")
	if err := ensureDir(testFile); err != nil {
		t.Errorf("ensureDir failed: %v", err)
	}
	if _, err := os.Stat(tmpDir); os.IsNotExist(err) {
		t.Error("directory should have been created")
	}
}

func TestRunNonInteractive_MissingConfigIsWarningOnly(t *testing.T) {
	checker := NewChecker(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	result := checker.RunNonInteractive()

	if !result.Success {
		t.Errorf("a missing config file should not fail the check, got errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the missing config file")
	}
}

func TestRunNonInteractive_InvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not valid"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	checker := NewChecker(path)
	result := checker.RunNonInteractive()

	if result.Success {
		t.Error("expected an invalid config file to fail the check")
	}
	if len(result.Errors) == 0 {
		t.Error("expected an error about the invalid config file")
	}
}

func TestRunNonInteractive_ValidConfigPasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: 7247\ntheme: system\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	checker := NewChecker(path)
	result := checker.RunNonInteractive()

	if !result.Success {
		t.Errorf("expected a valid config to pass, got errors: %v", result.Errors)
	}
}
