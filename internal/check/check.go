// Package check provides the interactive and non-interactive environment
// checks run before the server starts: does a config file exist, does it
// parse, and are the provider CLIs it names actually on PATH.
package check

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pairreview/pairreview/internal/config"
)

// CheckResult is the outcome of a non-interactive preflight check.
type CheckResult struct {
	Success     bool
	Errors      []string
	Warnings    []string
	Suggestions []string
}

// Checker drives the environment check against a single config file path.
type Checker struct {
	configPath string
	report     *Report
	theme      *huh.Theme
}

// NewChecker creates a Checker for the config file at configPath.
func NewChecker(configPath string) *Checker {
	return &Checker{
		configPath: configPath,
		report:     NewReport(),
		theme:      huh.ThemeCharm(),
	}
}

// ConfigPath returns the path this checker validates.
func (c *Checker) ConfigPath() string {
	return c.configPath
}

// Run executes the full interactive environment check: offers to create a
// missing config file from the embedded template, validates it if present,
// and reports which registered provider CLIs are reachable on PATH.
func (c *Checker) Run() error {
	c.printHeader()

	fmt.Println()
	printSection("Checking configuration file")
	if err := c.checkConfigFile(); err != nil {
		return fmt.Errorf("config file check failed: %w", err)
	}

	fmt.Println()
	printSection("Validating configuration format")
	if err := c.validateConfig(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println()
	printSection("Checking provider CLIs")
	c.checkProviders()

	fmt.Println()
	c.report.Print()

	return nil
}

// RunNonInteractive performs a quick preflight without prompting or
// writing files. A missing config file is not an error: config.Load
// returns defaults for one. An unparsable existing file is fatal; no
// provider CLI being reachable is a warning, since the user may configure
// one later via the config file.
func (c *Checker) RunNonInteractive() *CheckResult {
	result := &CheckResult{Success: true}

	if fileExists(c.configPath) {
		if _, err := config.Load(c.configPath); err != nil {
			result.Success = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("invalid config file %s: %v", c.configPath, err))
			result.Suggestions = append(result.Suggestions,
				"run 'pairreview serve --check' to validate and fix the config file interactively")
			return result
		}
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no config file at %s, using built-in defaults", c.configPath))
	}

	if reachable := reachableProviderCount(); reachable == 0 {
		result.Warnings = append(result.Warnings,
			"no registered provider CLI was found on PATH; analysis runs will fail until one is installed")
	}

	return result
}

func (c *Checker) printHeader() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	fmt.Println(titleStyle.Render("pairreview environment check"))
}

func printSection(title string) {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15"))
	fmt.Println(style.Render(title + "..."))
}

func confirmCreate(path string) (bool, error) {
	var confirm bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Create %s from template?", path)).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Run()
	if err != nil {
		return false, err
	}
	return confirm, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// PrintCheckResult prints a RunNonInteractive result in a formatted way.
func PrintCheckResult(result *CheckResult) {
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))

	if len(result.Errors) > 0 {
		fmt.Println()
		fmt.Println(red.Render("[ERROR] Environment check failed"))
		fmt.Println()
		for _, err := range result.Errors {
			fmt.Println(red.Render(fmt.Sprintf("  x %s", err)))
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		fmt.Println(yellow.Render("[WARNING] Configuration warnings:"))
		fmt.Println()
		for _, warn := range result.Warnings {
			fmt.Println(yellow.Render(fmt.Sprintf("  ! %s", warn)))
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Println(cyan.Render("\nTo fix these issues:"))
		for _, suggestion := range result.Suggestions {
			fmt.Printf("  -> %s\n", suggestion)
		}
	}

	fmt.Println()
}
