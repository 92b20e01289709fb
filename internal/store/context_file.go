package store

import (
	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// ContextFileStore defines operations on user-pinned context file ranges.
type ContextFileStore interface {
	Add(contextFile *model.ContextFile) error
	ListByReview(reviewID uint) ([]model.ContextFile, error)
	ListByReviewAndFile(reviewID uint, file string) ([]model.ContextFile, error)
	UpdateRange(id uint, lineStart, lineEnd int) error
	Remove(reviewID, id uint) error
	RemoveAllByReview(reviewID uint) error
}

type contextFileStore struct {
	db *gorm.DB
}

func newContextFileStore(db *gorm.DB) ContextFileStore {
	return &contextFileStore{db: db}
}

func (s *contextFileStore) Add(contextFile *model.ContextFile) error {
	if contextFile.File == "" {
		return pairerrors.ErrInvalidInput("file is required")
	}
	if err := s.db.Create(contextFile).Error; err != nil {
		return pairerrors.ErrStorage("failed to add context file", err)
	}
	return nil
}

func (s *contextFileStore) ListByReview(reviewID uint) ([]model.ContextFile, error) {
	var files []model.ContextFile
	err := s.db.Where("review_id = ?", reviewID).Order("file ASC, line_start ASC").Find(&files).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list context files", err)
	}
	return files, nil
}

func (s *contextFileStore) ListByReviewAndFile(reviewID uint, file string) ([]model.ContextFile, error) {
	var files []model.ContextFile
	err := s.db.Where("review_id = ? AND file = ?", reviewID, file).Order("line_start ASC").Find(&files).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list context files", err)
	}
	return files, nil
}

func (s *contextFileStore) UpdateRange(id uint, lineStart, lineEnd int) error {
	result := s.db.Model(&model.ContextFile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"line_start": lineStart,
		"line_end":   lineEnd,
	})
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to update context file range", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("context file")
	}
	return nil
}

func (s *contextFileStore) Remove(reviewID, id uint) error {
	result := s.db.Where("review_id = ?", reviewID).Delete(&model.ContextFile{}, id)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to remove context file", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("context file")
	}
	return nil
}

func (s *contextFileStore) RemoveAllByReview(reviewID uint) error {
	if err := s.db.Where("review_id = ?", reviewID).Delete(&model.ContextFile{}).Error; err != nil {
		return pairerrors.ErrStorage("failed to remove context files", err)
	}
	return nil
}
