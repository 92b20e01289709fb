package check

import (
	"fmt"
	"os"

	"github.com/pairreview/pairreview/internal/configfiles"
)

// FileCheckResult is the outcome of checking whether the config file exists.
type FileCheckResult struct {
	Path    string
	Exists  bool
	Created bool
	Error   error
}

// checkConfigFile checks whether the config file exists and, if not, offers
// to create it from the embedded template.
func (c *Checker) checkConfigFile() error {
	result := c.checkFile(c.configPath)
	c.report.SetFileResult(result)
	return result.Error
}

func (c *Checker) checkFile(path string) FileCheckResult {
	result := FileCheckResult{Path: path}

	if fileExists(path) {
		result.Exists = true
		printFileStatus(path, true, false)
		return result
	}

	result.Exists = false
	printFileStatus(path, false, false)

	confirm, err := confirmCreate(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to get user confirmation: %w", err)
		return result
	}
	if !confirm {
		return result
	}

	content, err := configfiles.GetConfigExample()
	if err != nil {
		result.Error = fmt.Errorf("failed to load config template: %w", err)
		return result
	}

	if err := ensureDir(path); err != nil {
		result.Error = err
		return result
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		result.Error = fmt.Errorf("failed to create file %s: %w", path, err)
		return result
	}

	result.Created = true
	printFileCreated(path)

	return result
}

func printFileStatus(path string, exists bool, created bool) {
	switch {
	case exists:
		fmt.Printf("  [ok] %s\n", path)
	case created:
		fmt.Printf("  [ok] %s (created)\n", path)
	default:
		fmt.Printf("  [!]  %s does not exist\n", path)
	}
}

func printFileCreated(path string) {
	fmt.Printf("  [ok] created %s\n", path)
}
