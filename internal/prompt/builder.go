package prompt

import (
	"context"

	"github.com/pairreview/pairreview/internal/orchestrator"
)

// defaultAreas are the focus areas every review voice is asked to check,
// in priority order.
var defaultAreas = []string{
	"correctness",
	"security",
	"performance",
	"readability & maintainability",
}

// Builder converts an orchestrator.PromptRequest into prompt text. It
// implements orchestrator.PromptBuilder.
type Builder struct {
	renderer *Renderer
}

// NewBuilder creates a Builder with its templates already parsed.
func NewBuilder() *Builder {
	return &Builder{renderer: NewRenderer()}
}

// Build renders the prompt text for req.
func (b *Builder) Build(ctx context.Context, req orchestrator.PromptRequest) (string, error) {
	return b.renderer.Render(b.toSpec(req))
}

func (b *Builder) toSpec(req orchestrator.PromptRequest) *Spec {
	return &Spec{
		SystemRole:  b.buildSystemRole(req),
		Goals:       GoalsSpec{Areas: defaultAreas},
		Constraints: b.buildConstraints(req),
		Context: ContextSpec{
			WorkDir:                req.Diff.WorkDir,
			Diff:                   req.Diff.Text,
			Level:                  req.Level,
			Aggregating:            req.Aggregating,
			PriorSuggestionsDigest: FormatSuggestionsDigest(req.PriorSuggestions),
		},
	}
}

func (b *Builder) buildSystemRole(req orchestrator.PromptRequest) SystemRoleSpec {
	if req.Aggregating {
		return SystemRoleSpec{
			Description: "You are a senior code reviewer reconciling several independent reviews of the same change into one de-duplicated, ranked set of findings.",
		}
	}
	return SystemRoleSpec{
		Description: "You are an expert code reviewer examining a diff for real, actionable issues.",
	}
}

// buildConstraints consolidates the review's and the voice's own
// instructions onto a fixed default output style.
func (b *Builder) buildConstraints(req orchestrator.PromptRequest) ConstraintsSpec {
	constraints := ConstraintsSpec{
		FocusOnIssuesOnly: true,
		Tone:              "constructive",
		Concise:           true,
		NoEmoji:           true,
	}

	var custom []string
	if req.RepoInstructions != nil && *req.RepoInstructions != "" {
		custom = append(custom, *req.RepoInstructions)
	}
	if req.RequestInstructions != nil && *req.RequestInstructions != "" {
		custom = append(custom, *req.RequestInstructions)
	}
	if req.Voice.CustomInstructions != nil && *req.Voice.CustomInstructions != "" {
		custom = append(custom, *req.Voice.CustomInstructions)
	}
	constraints.CustomInstructions = custom

	return constraints
}
