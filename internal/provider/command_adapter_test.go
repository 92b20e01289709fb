package provider

import (
	"context"
	"testing"
	"time"
)

func TestCommandAdapter_SpawnMissingBinary(t *testing.T) {
	adapter := NewCommandAdapter(Definition{ID: "missing", Command: "pairreview-does-not-exist-xyz"})
	_, err := adapter.Spawn(context.Background(), SpawnRequest{})
	if err == nil {
		t.Fatal("expected an error spawning a nonexistent binary")
	}
}

func TestCommandAdapter_CleanExit(t *testing.T) {
	adapter := NewCommandAdapter(Definition{ID: "true-provider", Command: "true"})
	inv, err := adapter.Spawn(context.Background(), SpawnRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}
	for range inv.Parse() {
	}
	if err := inv.Exit(); err != nil {
		t.Errorf("Exit() expected nil for a clean exit, got %v", err)
	}
}

func TestCommandAdapter_NonZeroExitSurfacesProviderFailed(t *testing.T) {
	adapter := NewCommandAdapter(Definition{ID: "false-provider", Command: "false"})
	inv, err := adapter.Spawn(context.Background(), SpawnRequest{})
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}
	for range inv.Parse() {
	}
	if err := inv.Exit(); err == nil {
		t.Error("expected Exit() to surface a ProviderFailed error for a nonzero exit")
	}
}

func TestCommandAdapter_EmitsSuggestionEventsFromStdout(t *testing.T) {
	adapter := NewCommandAdapter(Definition{
		ID:      "echo-provider",
		Command: "sh",
		Args:    []string{"-c", `echo '{"kind":"summary","text":"from-%MODEL%"}'`},
	})
	inv, err := adapter.Spawn(context.Background(), SpawnRequest{Model: "test-model"})
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}

	var events []Event
	for e := range inv.Parse() {
		events = append(events, e)
	}
	if err := inv.Exit(); err != nil {
		t.Fatalf("Exit() failed: %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventSummary || events[0].Text != "from-test-model" {
		t.Errorf("expected one summary event with the substituted model, got %+v", events)
	}
}

func TestCommandAdapter_CancelKillsLongRunningProcess(t *testing.T) {
	adapter := NewCommandAdapter(Definition{
		ID:      "sleep-provider",
		Command: "sleep",
		Args:    []string{"30"},
	})
	ctx, cancel := context.WithCancel(context.Background())
	inv, err := adapter.Spawn(ctx, SpawnRequest{})
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		for range inv.Parse() {
		}
		done <- inv.Exit()
	}()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected Exit() to surface a Cancelled error after context cancellation")
		}
	case <-time.After(killGracePeriod + 5*time.Second):
		t.Fatal("Exit() did not return after cancellation within the kill grace period")
	}
}
