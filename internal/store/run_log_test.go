package store

import (
	"testing"

	"github.com/pairreview/pairreview/internal/model"
)

func TestRunLogStore_WriteAndGetByScope(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	err := st.RunLog().Write([]model.RunLog{
		{Scope: model.RunLogScopeRun, ScopeID: "run1", Level: model.LogLevelInfo, Message: "starting"},
		{Scope: model.RunLogScopeRun, ScopeID: "run1", Level: model.LogLevelError, Message: "provider timed out"},
	})
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	logs, err := st.RunLog().GetByScope(model.RunLogScopeRun, "run1")
	if err != nil {
		t.Fatalf("GetByScope() failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
}

func TestRunLogStore_GetByScopeWithLevelAndAbove(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	err := st.RunLog().BatchCreate([]model.RunLog{
		{Scope: model.RunLogScopeRun, ScopeID: "run1", Level: model.LogLevelDebug, Message: "debug"},
		{Scope: model.RunLogScopeRun, ScopeID: "run1", Level: model.LogLevelWarn, Message: "warn"},
		{Scope: model.RunLogScopeRun, ScopeID: "run1", Level: model.LogLevelError, Message: "error"},
	})
	if err != nil {
		t.Fatalf("BatchCreate() failed: %v", err)
	}

	logs, err := st.RunLog().GetByScopeWithLevelAndAbove(model.RunLogScopeRun, "run1", model.LogLevelWarn)
	if err != nil {
		t.Fatalf("GetByScopeWithLevelAndAbove() failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs at warn or above, got %d", len(logs))
	}
}

func TestRunLogStore_GetLatestByScope_ReturnsChronologicalOrder(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if err := st.RunLog().Create(&model.RunLog{
			Scope: model.RunLogScopeReview, ScopeID: "review1", Level: model.LogLevelInfo, Message: "tick",
		}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	logs, err := st.RunLog().GetLatestByScope(model.RunLogScopeReview, "review1", 2)
	if err != nil {
		t.Fatalf("GetLatestByScope() failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if !logs[0].CreatedAt.Before(logs[1].CreatedAt) && logs[0].CreatedAt != logs[1].CreatedAt {
		t.Errorf("expected logs in chronological order")
	}
}

func TestRunLogStore_DeleteByScope(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	if err := st.RunLog().Create(&model.RunLog{
		Scope: model.RunLogScopeRun, ScopeID: "run1", Level: model.LogLevelInfo, Message: "x",
	}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := st.RunLog().DeleteByScope(model.RunLogScopeRun, "run1"); err != nil {
		t.Fatalf("DeleteByScope() failed: %v", err)
	}

	count, err := st.RunLog().CountByScope(model.RunLogScopeRun, "run1")
	if err != nil {
		t.Fatalf("CountByScope() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 logs after delete, got %d", count)
	}
}

func TestRunLogStore_Write_EmptyIsNoop(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	if err := st.RunLog().Write(nil); err != nil {
		t.Fatalf("Write(nil) should be a no-op, got error: %v", err)
	}
}
