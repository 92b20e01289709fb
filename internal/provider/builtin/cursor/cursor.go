// Package cursor registers cursor-agent as a built-in review provider.
package cursor

import (
	"github.com/pairreview/pairreview/internal/provider"
)

// ID is the provider's registry identifier.
const ID = "cursor"

func init() {
	provider.Register(definition(), provider.NewCommandAdapter)
}

func definition() provider.Definition {
	return provider.Definition{
		ID:      ID,
		Command: "cursor-agent",
		// -p/--force run non-interactively; stream-json gives us the
		// line-delimited event stream parseStream expects.
		Args:     []string{"-p", "--force", "--model", "%MODEL%", "--output-format", "stream-json"},
		YoloArgs: []string{"-p", "--force", "--model", "%MODEL%", "--output-format", "stream-json", "--yolo"},
		Models: []provider.Model{
			{ID: "composer-1", Tier: provider.TierBalanced, Name: "Composer 1", Default: true},
			{ID: "sonnet-4.5", Tier: provider.TierThorough, Name: "Sonnet 4.5"},
			{ID: "grok-code-fast", Tier: provider.TierFast, Name: "Grok Code Fast"},
		},
		InstallInstructions: "install the cursor-agent CLI and run `cursor-agent login`",
	}
}
