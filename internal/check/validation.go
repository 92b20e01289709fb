package check

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pairreview/pairreview/internal/config"
	"github.com/pairreview/pairreview/internal/provider"
)

// ValidationResult is the outcome of parsing the config file.
type ValidationResult struct {
	Path  string
	Valid bool
	Error error
}

// ProviderCheckResult is the outcome of resolving one registered provider's
// CLI on PATH.
type ProviderCheckResult struct {
	ID        string
	Command   string
	Available bool
	Resolved  string
}

// validateConfig parses the config file, if one exists, and records the
// result. A missing file is valid: config.Load treats it as "use defaults".
func (c *Checker) validateConfig() error {
	result := ValidationResult{Path: c.configPath}

	if _, err := config.Load(c.configPath); err != nil {
		result.Valid = false
		result.Error = fmt.Errorf("format error: %w", err)
		c.report.SetValidationResult(result)
		printValidationResult(result)
		return result.Error
	}

	result.Valid = true
	c.report.SetValidationResult(result)
	printValidationResult(result)
	return nil
}

// checkProviders resolves each registered provider's command on PATH and
// records the results. Never fails the check: a provider the user hasn't
// installed yet simply isn't usable until they do.
func (c *Checker) checkProviders() {
	for _, def := range provider.List() {
		result := ProviderCheckResult{ID: def.ID, Command: def.Command}
		if resolved, err := exec.LookPath(def.Command); err == nil {
			result.Available = true
			result.Resolved = resolved
		}
		c.report.AddProviderResult(result)
		printProviderResult(result)
	}
}

// reachableProviderCount returns how many registered providers have their
// command resolvable on PATH.
func reachableProviderCount() int {
	count := 0
	for _, def := range provider.List() {
		if _, err := exec.LookPath(def.Command); err == nil {
			count++
		}
	}
	return count
}

func printValidationResult(result ValidationResult) {
	if result.Valid {
		fmt.Printf("  [ok] %s\n", result.Path)
		return
	}
	fmt.Printf("  [x]  %s: %v\n", result.Path, result.Error)
}

func printProviderResult(result ProviderCheckResult) {
	if result.Available {
		fmt.Printf("  [ok] %s (%s)\n", result.ID, result.Resolved)
		return
	}
	fmt.Printf("  [!]  %s: %q not found on PATH\n", result.ID, result.Command)
}

// describeProviders renders a short comma-joined summary of provider ids,
// used in report output.
func describeProviders(results []ProviderCheckResult) string {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return strings.Join(ids, ", ")
}
