package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Renderer renders prompt specifications into prompt text
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer creates a new prompt renderer
func NewRenderer() *Renderer {
	r := &Renderer{}
	r.initTemplates()
	return r
}

// initTemplates initializes the prompt templates
func (r *Renderer) initTemplates() {
	funcMap := template.FuncMap{
		"join":     strings.Join,
		"indent":   indent,
		"bullet":   bullet,
		"numbered": numbered,
		"quote":    quote,
		"add":      func(a, b int) int { return a + b },
	}

	r.tmpl = template.New("prompt").Funcs(funcMap)

	template.Must(r.tmpl.New("main").Parse(mainTemplate))
	template.Must(r.tmpl.New("system_role").Parse(systemRoleTemplate))
	template.Must(r.tmpl.New("goals").Parse(goalsTemplate))
	template.Must(r.tmpl.New("constraints").Parse(constraintsTemplate))
	template.Must(r.tmpl.New("context").Parse(contextTemplate))
	template.Must(r.tmpl.New("output_format").Parse(OutputFormatInstructions()))
}

// Render renders a Spec into prompt text
func (r *Renderer) Render(spec *Spec) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "main", spec); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	promptText := buf.String()

	return promptText, nil
}

// RenderSystemPrompt renders only the system prompt portion
func (r *Renderer) RenderSystemPrompt(spec *Spec) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "system_role", spec.SystemRole); err != nil {
		return "", fmt.Errorf("failed to render system prompt: %w", err)
	}
	return buf.String(), nil
}

// Helper functions for templates
func indent(spaces int, s string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}

func bullet(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}

// numbered formats items as a numbered list (1. 2. 3. etc.)
func numbered(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item))
	}
	return sb.String()
}

// quote formats text as a markdown blockquote
func quote(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("> ")
		sb.WriteString(line)
	}
	return sb.String()
}

// Template definitions.
const mainTemplate = `{{template "system_role" .SystemRole}}

{{template "goals" .Goals}}

{{template "constraints" .Constraints}}

{{template "context" .Context}}

{{template "output_format" .}}`

const systemRoleTemplate = `## Role

{{.Description}}
`

const goalsTemplate = `## Goals

Review the following areas in priority order:
{{range $i, $area := .Areas}}{{add $i 1}}. {{$area}}
{{end}}
For each area, identify and check all relevant detection points based on industry best practices (e.g., OWASP Top 10, CWE, performance anti-patterns).`

const constraintsTemplate = `## Constraints
{{- if .FocusOnIssuesOnly}}

### Focus
- Focus ONLY on reporting issues/problems found in the code
- Do NOT explain what the code changes do or what problem they fix
- Do NOT describe the intent or purpose of the changes
- Do NOT praise or commend the changes
{{- end}}
{{- if .CustomInstructions}}

### Additional Instructions
{{bullet .CustomInstructions}}
{{- end}}

### Output Style
{{- if .Tone}}
- Tone: {{.Tone}}
{{- end}}
{{- if .Concise}}
- Be concise.
{{- end}}
{{- if .NoEmoji}}
- Do NOT use emojis.
{{- end}}`

const contextTemplate = `## Context
{{- if .Aggregating}}

You are reconciling the suggestions below, produced independently by
several reviewers against the same diff. De-duplicate overlapping
findings, drop anything not supported by the diff, and rank what remains
by severity.

### Suggestions To Reconcile

{{.PriorSuggestionsDigest}}
{{- else}}

### Diff Under Review
{{- if gt .Level 1}} (level {{.Level}}){{end}}

` + "```diff" + `
{{.Diff}}
` + "```" + `
{{- if .PriorSuggestionsDigest}}

### Earlier-Level Findings
The following were already reported by an earlier review level. Avoid
repeating them verbatim; focus on what they missed.

{{.PriorSuggestionsDigest}}
{{- end}}
{{- end}}`

// QuickRender is a convenience function to render a spec with default settings.
func QuickRender(spec *Spec) (string, error) {
	return NewRenderer().Render(spec)
}
