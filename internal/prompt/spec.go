// Package prompt renders the default review prompt handed to a provider
// subprocess on stdin: a structured intermediate Spec, built from an
// orchestrator.PromptRequest, rendered to text by a text/template
// pipeline. This is the minimal default recipe named in §4.3 of the
// review spec - the orchestrator depends only on the PromptBuilder
// interface, so a deployment can substitute its own recipe entirely.
package prompt

// Spec is the intermediate representation between a voice invocation and
// the rendered prompt text.
type Spec struct {
	SystemRole  SystemRoleSpec
	Goals       GoalsSpec
	Constraints ConstraintsSpec
	Context     ContextSpec
}

// SystemRoleSpec defines the voice's identity for this invocation.
type SystemRoleSpec struct {
	Description string
}

// GoalsSpec lists the review focus areas in priority order.
type GoalsSpec struct {
	Areas []string
}

// ConstraintsSpec carries the review's and the voice's own instructions
// plus fixed output-style defaults.
type ConstraintsSpec struct {
	FocusOnIssuesOnly  bool
	Tone               string
	Concise            bool
	NoEmoji            bool
	CustomInstructions []string
}

// ContextSpec carries the diff under review and whatever came from earlier
// levels.
type ContextSpec struct {
	WorkDir                string
	Diff                   string
	Level                  int
	Aggregating            bool
	PriorSuggestionsDigest string
}
