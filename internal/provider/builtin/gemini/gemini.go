// Package gemini registers the Gemini CLI as a built-in review provider.
package gemini

import (
	"github.com/pairreview/pairreview/internal/provider"
)

// ID is the provider's registry identifier.
const ID = "gemini"

func init() {
	provider.Register(definition(), provider.NewCommandAdapter)
}

func definition() provider.Definition {
	return provider.Definition{
		ID:       ID,
		Command:  "gemini",
		Args:     []string{"-p", "--model", "%MODEL%", "--output-format", "stream-json"},
		YoloArgs: []string{"-p", "--model", "%MODEL%", "--output-format", "stream-json", "--yolo"},
		Models: []provider.Model{
			{ID: "gemini-2.5-pro", Tier: provider.TierThorough, Name: "Gemini 2.5 Pro"},
			{ID: "gemini-2.5-flash", Tier: provider.TierBalanced, Name: "Gemini 2.5 Flash", Default: true},
			{ID: "gemini-2.5-flash-lite", Tier: provider.TierFast, Name: "Gemini 2.5 Flash-Lite"},
		},
		InstallInstructions: "install the gemini CLI and authenticate with `gemini auth login`",
	}
}
