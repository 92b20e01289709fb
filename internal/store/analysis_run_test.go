package store

import (
	"testing"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/pkg/idgen"
)

func newTestRun(reviewID uint, parentID *string) *model.AnalysisRun {
	return &model.AnalysisRun{
		ID:          idgen.NewRunID(),
		ReviewID:    reviewID,
		Status:      model.RunStatusRunning,
		ConfigType:  model.RunConfigTypeSingle,
		ParentRunID: parentID,
	}
}

func TestAnalysisRunStore_CreateAndGetByID(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	review := CreateTestPRReview(t, st)
	run := newTestRun(review.ID, nil)

	if err := st.AnalysisRun().Create(run); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	found, err := st.AnalysisRun().GetByID(run.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.ReviewID != review.ID {
		t.Errorf("expected review id %d, got %d", review.ID, found.ReviewID)
	}
}

func TestAnalysisRunStore_UpdateProgress(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	review := CreateTestPRReview(t, st)
	run := newTestRun(review.ID, nil)
	if err := st.AnalysisRun().Create(run); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	summary := "found 3 issues"
	err := st.AnalysisRun().UpdateProgress(run.ID, model.RunStatusCompleted, &summary, 3, 2, "")
	if err != nil {
		t.Fatalf("UpdateProgress() failed: %v", err)
	}

	found, err := st.AnalysisRun().GetByID(run.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.Status != model.RunStatusCompleted {
		t.Errorf("expected status completed, got %s", found.Status)
	}
	if found.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
	if found.TotalSuggestions != 3 {
		t.Errorf("expected total_suggestions 3, got %d", found.TotalSuggestions)
	}
}

func TestAnalysisRunStore_UpdateProgress_SkipsWhenStatusMatches(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	review := CreateTestPRReview(t, st)
	run := newTestRun(review.ID, nil)
	if err := st.AnalysisRun().Create(run); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := st.AnalysisRun().UpdateProgress(run.ID, model.RunStatusCancelled, nil, 0, 0, ""); err != nil {
		t.Fatalf("UpdateProgress() cancel failed: %v", err)
	}

	if err := st.AnalysisRun().UpdateProgress(run.ID, model.RunStatusCompleted, nil, 5, 5, model.RunStatusCancelled); err != nil {
		t.Fatalf("UpdateProgress() guarded update failed: %v", err)
	}

	found, err := st.AnalysisRun().GetByID(run.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if found.Status != model.RunStatusCancelled {
		t.Errorf("expected status to remain cancelled, got %s", found.Status)
	}
}

func TestAnalysisRunStore_ListByReview_ParentFirst(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	review := CreateTestPRReview(t, st)
	parent := newTestRun(review.ID, nil)
	if err := st.AnalysisRun().Create(parent); err != nil {
		t.Fatalf("Create() parent failed: %v", err)
	}
	child := newTestRun(review.ID, &parent.ID)
	if err := st.AnalysisRun().Create(child); err != nil {
		t.Fatalf("Create() child failed: %v", err)
	}

	runs, err := st.AnalysisRun().ListByReview(review.ID)
	if err != nil {
		t.Fatalf("ListByReview() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != parent.ID {
		t.Errorf("expected parent run first, got %s", runs[0].ID)
	}
}

func TestAnalysisRunStore_ListChildren(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	review := CreateTestPRReview(t, st)
	parent := newTestRun(review.ID, nil)
	if err := st.AnalysisRun().Create(parent); err != nil {
		t.Fatalf("Create() parent failed: %v", err)
	}
	child1 := newTestRun(review.ID, &parent.ID)
	child2 := newTestRun(review.ID, &parent.ID)
	if err := st.AnalysisRun().Create(child1); err != nil {
		t.Fatalf("Create() child1 failed: %v", err)
	}
	if err := st.AnalysisRun().Create(child2); err != nil {
		t.Fatalf("Create() child2 failed: %v", err)
	}

	children, err := st.AnalysisRun().ListChildren(parent.ID)
	if err != nil {
		t.Fatalf("ListChildren() failed: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("expected 2 children, got %d", len(children))
	}
}

func TestAnalysisRunStore_Delete(t *testing.T) {
	st, cleanup := SetupTestDB(t)
	defer cleanup()

	review := CreateTestPRReview(t, st)
	run := newTestRun(review.ID, nil)
	if err := st.AnalysisRun().Create(run); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := st.AnalysisRun().Delete(run.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := st.AnalysisRun().GetByID(run.ID); err == nil {
		t.Error("expected error loading deleted run")
	}
}
