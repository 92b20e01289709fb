package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pairreview/pairreview/internal/configfiles"
)

func TestChecker_CheckFile_ExistingFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte("port: 7247\n"), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	checker := NewChecker(tmpFile)
	result := checker.checkFile(tmpFile)

	if !result.Exists {
		t.Error("checkFile should detect an existing file")
	}
	if result.Created {
		t.Error("checkFile should not mark an existing file as created")
	}
	if result.Error != nil {
		t.Errorf("checkFile should not return an error for an existing file: %v", result.Error)
	}
	if result.Path != tmpFile {
		t.Errorf("checkFile result.Path = %s, want %s", result.Path, tmpFile)
	}
}

// checkFile on a missing path without a terminal attached to answer the
// confirm prompt errors out rather than hanging; this still exercises the
// "does not exist" branch before the prompt.
func TestChecker_CheckFile_NonExistingFile(t *testing.T) {
	nonExistentFile := filepath.Join(t.TempDir(), "nonexistent.yaml")

	checker := NewChecker(nonExistentFile)
	result := checker.checkFile(nonExistentFile)

	if result.Exists {
		t.Error("checkFile should detect a non-existing file")
	}
}

func TestGetConfigExample_UsedByCheckFile(t *testing.T) {
	content, err := configfiles.GetConfigExample()
	if err != nil {
		t.Fatalf("GetConfigExample failed: %v", err)
	}
	if len(content) == 0 {
		t.Error("expected non-empty embedded config template")
	}
}
