package claude

import (
	"testing"

	"github.com/pairreview/pairreview/internal/provider"
)

func TestRegistration(t *testing.T) {
	def, ok := provider.Definitions(ID)
	if !ok {
		t.Fatalf("claude provider is not registered")
	}
	if def.Command != "claude" {
		t.Errorf("expected command claude, got %s", def.Command)
	}
	if dm := def.DefaultModel(); dm == nil || dm.ID != "claude-sonnet-4.5" {
		t.Errorf("expected default model claude-sonnet-4.5, got %+v", dm)
	}
}
