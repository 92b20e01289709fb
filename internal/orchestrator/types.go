// Package orchestrator drives an analysis run from a resolved voice plan
// through provider subprocess execution to a persisted, broadcast result.
package orchestrator

import (
	"context"
	"strconv"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/provider"
)

// Voice is a single AI backend invocation: which provider, which model (or
// tier, resolved to a default model by the provider registry), and any
// voice-specific instructions layered on top of the review's own.
type Voice struct {
	ID                 string // stable identifier for council voice_id bookkeeping; defaults to Provider if empty
	Provider           string
	Model              string
	Tier               string
	CustomInstructions *string
}

// Level is one sequential stage of a plan. Single and advanced plans carry
// exactly one voice per level; council plans may carry several, run in
// parallel.
type Level struct {
	Number int
	Voices []Voice
}

// VoicePlan is the fully resolved shape of what §4.3 calls "a voice plan":
// single, advanced, or council, normalized to an ordered list of levels plus
// an optional finalization voice.
type VoicePlan struct {
	Type model.RunConfigType
	// Levels are processed strictly in ascending Number order.
	Levels []Level
	// Orchestration, when non-nil, is spawned after every level finishes
	// with the union of prior suggestions as its input. Always present for
	// council plans; present for advanced plans only when the council
	// config carries an "orchestration" voice.
	Orchestration *Voice

	RequestInstructions *string
	RepoInstructions    *string
}

// HasOrchestration reports whether this plan has a finalization pass, which
// determines whether earlier levels' suggestions are persisted as raw
// per-voice output (is_raw=true) or directly as final output.
func (p VoicePlan) HasOrchestration() bool {
	return p.Orchestration != nil
}

// DiffContext is what a DiffSource resolves a review down to: the unified
// diff text to review and the working directory a provider subprocess
// should be spawned in.
type DiffContext struct {
	Text    string
	WorkDir string
}

// DiffSource resolves a review to the diff content an analysis run reviews.
// Implemented by the PR-fetch path and by internal/localreview for local
// working-tree reviews.
type DiffSource interface {
	Load(ctx context.Context, review *model.Review) (DiffContext, error)
}

// PromptRequest is everything a PromptBuilder needs to render the prompt
// text handed to a provider subprocess on stdin.
type PromptRequest struct {
	Review              *model.Review
	Diff                DiffContext
	Level               int
	Voice               Voice
	RequestInstructions *string
	RepoInstructions    *string
	// PriorSuggestions carries the digest of earlier levels' output for
	// advanced/council levels after the first; nil for level 1.
	PriorSuggestions []provider.Suggestion
	// Aggregating is true for the orchestration pass: Diff is still
	// populated but PriorSuggestions holds the full union to be deduplicated
	// and ranked rather than a digest.
	Aggregating bool
}

// PromptBuilder renders the text sent to a provider subprocess. The exact
// prompt shape is a recipe responsibility the orchestrator does not
// constrain, beyond supplying it everything listed in PromptRequest.
type PromptBuilder interface {
	Build(ctx context.Context, req PromptRequest) (string, error)
}

// ProviderFactory constructs a provider.Adapter for a voice. Abstracted from
// provider.New so tests can substitute fake adapters.
type ProviderFactory func(providerID string, overrides *provider.Definition) (provider.Adapter, error)

// Publisher broadcasts progress events. Implemented by internal/progress's
// Bus; kept as a narrow interface here so the orchestrator does not import
// the transport-facing package.
type Publisher interface {
	Publish(topicKey string, event any)
}

// RunTopic and ReviewTopic format progress-bus topic keys per §4.4.
func RunTopic(runID string) string     { return "run-" + runID }
func ReviewTopic(reviewID uint) string { return "review-" + strconv.FormatUint(uint64(reviewID), 10) }
