package progress

import (
	"testing"
	"time"
)

func TestBus_PublishDeliversToSubscriber(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe("run-abc")
	defer unsubscribe()

	b.Publish("run-abc", map[string]any{"type": "progress", "stage": "running"})

	select {
	case event := <-ch:
		m := event.(map[string]any)
		if m["stage"] != "running" {
			t.Errorf("expected stage=running, got %v", m["stage"])
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBus_ReplaysLastTerminalOnSubscribe(t *testing.T) {
	b := NewBus()
	b.Publish("run-xyz", map[string]any{"status": "completed"})

	ch, unsubscribe := b.Subscribe("run-xyz")
	defer unsubscribe()

	select {
	case event := <-ch:
		m := event.(map[string]any)
		if m["status"] != "completed" {
			t.Errorf("expected replayed terminal status=completed, got %v", m["status"])
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for replayed terminal event")
	}
}

func TestBus_NonTerminalEventsAreNotReplayed(t *testing.T) {
	b := NewBus()
	b.Publish("run-nonterm", map[string]any{"status": "running"})

	ch, unsubscribe := b.Subscribe("run-nonterm")
	defer unsubscribe()

	select {
	case event := <-ch:
		t.Fatalf("expected no replay for a non-terminal event, got %v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBus()
	_, unsubscribe := b.Subscribe("run-full")
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			b.Publish("run-full", map[string]any{"i": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	ch, unsubscribe := b.Subscribe("run-unsub")
	unsubscribe()

	b.Publish("run-unsub", map[string]any{"stage": "running"})

	select {
	case event, ok := <-ch:
		if ok {
			t.Fatalf("expected no further delivery after unsubscribe, got %v", event)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
