package codex

import (
	"testing"

	"github.com/pairreview/pairreview/internal/provider"
)

func TestRegistration(t *testing.T) {
	def, ok := provider.Definitions(ID)
	if !ok {
		t.Fatalf("codex provider is not registered")
	}
	if def.Command != "codex" {
		t.Errorf("expected command codex, got %s", def.Command)
	}
	if dm := def.DefaultModel(); dm == nil || dm.ID != "gpt-5-codex" {
		t.Errorf("expected default model gpt-5-codex, got %+v", dm)
	}
}
