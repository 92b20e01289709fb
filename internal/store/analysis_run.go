package store

import (
	"time"

	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// AnalysisRunStore defines operations on the AnalysisRun tree.
type AnalysisRunStore interface {
	// Create inserts a new run. If run.Status is already terminal (used for
	// external ingestion of a run whose result is known at insert time),
	// CompletedAt must already be set by the caller.
	Create(run *model.AnalysisRun) error

	// UpdateProgress persists status/summary/totals. When skipIfStatus is
	// non-empty, the update is a no-op if the run is already in that status
	// (guards against a stale worker racing a cancel).
	UpdateProgress(id string, status model.RunStatus, summary *string, totalSuggestions, filesAnalyzed int, skipIfStatus model.RunStatus) error

	GetByID(id string) (*model.AnalysisRun, error)

	// ListByReview returns every run (parents and children) for a review,
	// ordered by completion time, with parent runs sorted ahead of their
	// children at the same completion time.
	ListByReview(reviewID uint) ([]model.AnalysisRun, error)

	GetLatest(reviewID uint) (*model.AnalysisRun, error)

	ListChildren(parentRunID string) ([]model.AnalysisRun, error)

	Delete(id string) error
}

type analysisRunStore struct {
	db *gorm.DB
}

func newAnalysisRunStore(db *gorm.DB) AnalysisRunStore {
	return &analysisRunStore{db: db}
}

func (s *analysisRunStore) Create(run *model.AnalysisRun) error {
	if run.ID == "" {
		return pairerrors.ErrInvalidInput("analysis run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if err := s.db.Create(run).Error; err != nil {
		return pairerrors.ErrStorage("failed to create analysis run", err)
	}
	return nil
}

func (s *analysisRunStore) UpdateProgress(id string, status model.RunStatus, summary *string, totalSuggestions, filesAnalyzed int, skipIfStatus model.RunStatus) error {
	query := s.db.Model(&model.AnalysisRun{}).Where("id = ?", id)
	if skipIfStatus != "" {
		query = query.Where("status != ?", skipIfStatus)
	}

	updates := map[string]interface{}{
		"status":            status,
		"total_suggestions": totalSuggestions,
		"files_analyzed":    filesAnalyzed,
	}
	if summary != nil {
		updates["summary"] = *summary
	}
	if status == model.RunStatusCompleted || status == model.RunStatusFailed || status == model.RunStatusCancelled {
		updates["completed_at"] = time.Now().UTC()
	}

	if err := query.Updates(updates).Error; err != nil {
		return pairerrors.ErrStorage("failed to update analysis run", err)
	}
	return nil
}

func (s *analysisRunStore) GetByID(id string) (*model.AnalysisRun, error) {
	var run model.AnalysisRun
	err := s.db.First(&run, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("analysis run")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load analysis run", err)
	}
	return &run, nil
}

func (s *analysisRunStore) ListByReview(reviewID uint) ([]model.AnalysisRun, error) {
	var runs []model.AnalysisRun
	// Parent-first within the same completion time: a NULL parent_run_id
	// sorts first via the "parent_run_id IS NULL DESC" clause.
	err := s.db.Where("review_id = ?", reviewID).
		Order("completed_at ASC").
		Order("parent_run_id IS NULL DESC").
		Find(&runs).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list analysis runs", err)
	}
	return runs, nil
}

func (s *analysisRunStore) GetLatest(reviewID uint) (*model.AnalysisRun, error) {
	var run model.AnalysisRun
	err := s.db.Where("review_id = ? AND parent_run_id IS NULL", reviewID).
		Order("started_at DESC").
		First(&run).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("analysis run")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load latest analysis run", err)
	}
	return &run, nil
}

func (s *analysisRunStore) ListChildren(parentRunID string) ([]model.AnalysisRun, error) {
	var runs []model.AnalysisRun
	err := s.db.Where("parent_run_id = ?", parentRunID).Order("created_at ASC").Find(&runs).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list child runs", err)
	}
	return runs, nil
}

func (s *analysisRunStore) Delete(id string) error {
	result := s.db.Delete(&model.AnalysisRun{}, "id = ?", id)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to delete analysis run", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("analysis run")
	}
	return nil
}
