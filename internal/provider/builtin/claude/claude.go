// Package claude registers Anthropic's Claude Code CLI as a built-in
// review provider.
package claude

import (
	"github.com/pairreview/pairreview/internal/provider"
)

// ID is the provider's registry identifier.
const ID = "claude"

func init() {
	provider.Register(definition(), provider.NewCommandAdapter)
}

func definition() provider.Definition {
	return provider.Definition{
		ID:      ID,
		Command: "claude",
		// -p runs non-interactively; stream-json mirrors the same
		// line-delimited event shape every other built-in provider emits.
		Args:     []string{"-p", "--output-format", "stream-json", "--model", "%MODEL%"},
		YoloArgs: []string{"-p", "--output-format", "stream-json", "--model", "%MODEL%", "--dangerously-skip-permissions"},
		Models: []provider.Model{
			{ID: "claude-opus-4", Tier: provider.TierThorough, Name: "Claude Opus 4"},
			{ID: "claude-sonnet-4.5", Tier: provider.TierBalanced, Name: "Claude Sonnet 4.5", Default: true},
			{ID: "claude-haiku-4.5", Tier: provider.TierFast, Name: "Claude Haiku 4.5"},
		},
		InstallInstructions: "install the claude CLI and run `claude login`",
	}
}
