// Package codex registers OpenAI's Codex CLI as a built-in review
// provider.
package codex

import (
	"github.com/pairreview/pairreview/internal/provider"
)

// ID is the provider's registry identifier.
const ID = "codex"

func init() {
	provider.Register(definition(), provider.NewCommandAdapter)
}

func definition() provider.Definition {
	return provider.Definition{
		ID:      ID,
		Command: "codex",
		// `exec` is codex's non-interactive subcommand; --json gives a
		// line-delimited event stream.
		Args:     []string{"exec", "--json", "--model", "%MODEL%", "--sandbox", "read-only"},
		YoloArgs: []string{"exec", "--json", "--model", "%MODEL%", "--dangerously-bypass-approvals-and-sandbox"},
		Models: []provider.Model{
			{ID: "gpt-5-codex-high", Tier: provider.TierThorough, Name: "GPT-5 Codex (high)"},
			{ID: "gpt-5-codex", Tier: provider.TierBalanced, Name: "GPT-5 Codex", Default: true},
			{ID: "gpt-5-codex-mini", Tier: provider.TierFast, Name: "GPT-5 Codex Mini"},
		},
		InstallInstructions: "install the codex CLI and run `codex login`",
	}
}
