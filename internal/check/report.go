package check

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Report collects check results for the final summary.
type Report struct {
	File            *FileCheckResult
	Validation      *ValidationResult
	ProviderResults []ProviderCheckResult
}

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{}
}

// SetFileResult records the config file existence check.
func (r *Report) SetFileResult(result FileCheckResult) {
	r.File = &result
}

// SetValidationResult records the config parse check.
func (r *Report) SetValidationResult(result ValidationResult) {
	r.Validation = &result
}

// AddProviderResult records one provider CLI resolution check.
func (r *Report) AddProviderResult(result ProviderCheckResult) {
	r.ProviderResults = append(r.ProviderResults, result)
}

// Print prints the final summary report.
func (r *Report) Print() {
	r.printSeparator()
	r.printSummary()
}

func (r *Report) printSeparator() {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	fmt.Println(style.Render(strings.Repeat("-", 50)))
}

func (r *Report) printSummary() {
	hasErrors := r.Validation != nil && !r.Validation.Valid
	available := 0
	for _, p := range r.ProviderResults {
		if p.Available {
			available++
		}
	}

	bold := lipgloss.NewStyle().Bold(true)
	switch {
	case hasErrors:
		fmt.Println(bold.Foreground(lipgloss.Color("9")).Render("check completed with errors"))
	case available == 0:
		fmt.Println(bold.Foreground(lipgloss.Color("11")).Render("check completed with warnings (no provider CLI reachable)"))
	default:
		fmt.Println(bold.Foreground(lipgloss.Color("10")).Render("check completed - all good"))
	}

	if len(r.ProviderResults) > 0 {
		fmt.Printf("  providers checked: %s (%d/%d reachable)\n",
			describeProviders(r.ProviderResults), available, len(r.ProviderResults))
	}
}
