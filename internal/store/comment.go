package store

import (
	"strings"

	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// RawSuggestion is the normalized shape an AI suggestion arrives in from the
// orchestrator before it is bulk-inserted as Comment rows.
type RawSuggestion struct {
	File         string
	Line         *int // nil for file-level suggestions
	LineEnd      *int
	Side         string // "OLD" or "NEW", mapped to LEFT/RIGHT
	Type         string
	Title        string
	Body         string
	Reasoning    *string
	Confidence   *float64
	Level        int
	VoiceID      *string
	IsRaw        bool
	CommitSHA    *string
}

// CommentStore defines operations on the unified Comment table.
type CommentStore interface {
	// CreateUserComment creates a user-authored line or file comment.
	CreateUserComment(comment *model.Comment) error

	// Adopt copies metadata from an AI suggestion into a new user comment
	// pointing back at it, reactivating a prior inactive adoption chain for
	// the same suggestion instead of creating a duplicate. Returns the
	// resulting user comment.
	Adopt(suggestionID uint, author string) (*model.Comment, error)

	UpdateBody(id uint, body string) error

	// SoftDelete marks a user comment inactive. If it was adopted from an AI
	// suggestion, that suggestion transitions back to dismissed and its id
	// is returned.
	SoftDelete(id uint) (dismissedSuggestionID *uint, err error)

	// BulkSoftDeleteByReview marks all active user comments in a review
	// inactive, returning the distinct set of suggestion ids dismissed as a
	// side effect.
	BulkSoftDeleteByReview(reviewID uint) ([]uint, error)

	Restore(id uint) error

	List(reviewID uint, includeDismissed bool) ([]model.Comment, error)

	// BulkInsertSuggestions normalizes and inserts AI suggestions under the
	// given run.
	BulkInsertSuggestions(runID string, suggestions []RawSuggestion) error

	// UpdateSuggestionStatus transitions an AI suggestion's status. Marking
	// it adopted requires adoptedAsID and records it as adopted_as_id; other
	// statuses leave adopted_as_id unchanged.
	UpdateSuggestionStatus(id uint, status model.CommentStatus, adoptedAsID *uint) error

	GetByID(id uint) (*model.Comment, error)
}

type commentStore struct {
	db *gorm.DB
}

func newCommentStore(db *gorm.DB) CommentStore {
	return &commentStore{db: db}
}

func (s *commentStore) CreateUserComment(comment *model.Comment) error {
	comment.Body = strings.TrimSpace(comment.Body)
	if comment.Body == "" && !comment.IsFileLevel {
		return pairerrors.ErrInvalidInput("comment body is required")
	}
	if !comment.IsFileLevel && comment.LineStart == nil {
		return pairerrors.ErrInvalidInput("line_start is required for a non-file-level comment")
	}
	if !comment.IsFileLevel && comment.LineEnd == nil {
		comment.LineEnd = comment.LineStart
	}
	comment.Source = model.CommentSourceUser
	if comment.Status == "" {
		comment.Status = model.CommentStatusActive
	}
	if err := s.db.Create(comment).Error; err != nil {
		return pairerrors.ErrStorage("failed to create comment", err)
	}
	return nil
}

func (s *commentStore) GetByID(id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := s.db.First(&comment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pairerrors.ErrNotFound("comment")
		}
		return nil, pairerrors.ErrStorage("failed to load comment", err)
	}
	return &comment, nil
}

func (s *commentStore) Adopt(suggestionID uint, author string) (*model.Comment, error) {
	var result *model.Comment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var suggestion model.Comment
		if err := tx.First(&suggestion, suggestionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return pairerrors.ErrNotFound("suggestion")
			}
			return pairerrors.ErrStorage("failed to load suggestion", err)
		}
		if suggestion.Source != model.CommentSourceAI {
			return pairerrors.ErrInvalidInput("only ai suggestions can be adopted")
		}

		// A prior inactive adoption chain exists if adopted_as_id already
		// points at a user comment - reactivate it instead of duplicating.
		if suggestion.AdoptedAsID != nil {
			var existing model.Comment
			if err := tx.First(&existing, *suggestion.AdoptedAsID).Error; err == nil {
				if err := tx.Model(&existing).Update("status", model.CommentStatusActive).Error; err != nil {
					return pairerrors.ErrStorage("failed to reactivate adopted comment", err)
				}
				if err := tx.Model(&suggestion).Update("status", model.CommentStatusAdopted).Error; err != nil {
					return pairerrors.ErrStorage("failed to update suggestion status", err)
				}
				result = &existing
				return nil
			}
		}

		userComment := model.Comment{
			ReviewID:    suggestion.ReviewID,
			Source:      model.CommentSourceUser,
			Author:      author,
			File:        suggestion.File,
			LineStart:   suggestion.LineStart,
			LineEnd:     suggestion.LineEnd,
			Side:        suggestion.Side,
			IsFileLevel: suggestion.IsFileLevel,
			Type:        suggestion.Type,
			Title:       suggestion.Title,
			Body:        suggestion.Body,
			Status:      model.CommentStatusActive,
			ParentID:    &suggestion.ID,
		}
		if err := tx.Create(&userComment).Error; err != nil {
			return pairerrors.ErrStorage("failed to create adopted comment", err)
		}

		if err := tx.Model(&suggestion).Updates(map[string]interface{}{
			"status":        model.CommentStatusAdopted,
			"adopted_as_id": userComment.ID,
		}).Error; err != nil {
			return pairerrors.ErrStorage("failed to update suggestion status", err)
		}

		result = &userComment
		return nil
	})
	return result, err
}

func (s *commentStore) UpdateBody(id uint, body string) error {
	result := s.db.Model(&model.Comment{}).Where("id = ? AND source = ?", id, model.CommentSourceUser).Update("body", body)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to update comment body", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("comment")
	}
	return nil
}

func (s *commentStore) SoftDelete(id uint) (*uint, error) {
	var dismissed *uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var comment model.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return pairerrors.ErrNotFound("comment")
			}
			return pairerrors.ErrStorage("failed to load comment", err)
		}

		if err := tx.Model(&comment).Update("status", model.CommentStatusInactive).Error; err != nil {
			return pairerrors.ErrStorage("failed to soft-delete comment", err)
		}

		if comment.ParentID != nil {
			if err := tx.Model(&model.Comment{}).
				Where("id = ? AND source = ?", *comment.ParentID, model.CommentSourceAI).
				Update("status", model.CommentStatusDismissed).Error; err != nil {
				return pairerrors.ErrStorage("failed to dismiss parent suggestion", err)
			}
			dismissed = comment.ParentID
		}
		return nil
	})
	return dismissed, err
}

func (s *commentStore) BulkSoftDeleteByReview(reviewID uint) ([]uint, error) {
	var dismissed []uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var comments []model.Comment
		if err := tx.Where("review_id = ? AND source = ? AND status = ?", reviewID, model.CommentSourceUser, model.CommentStatusActive).Find(&comments).Error; err != nil {
			return pairerrors.ErrStorage("failed to list comments", err)
		}

		seen := make(map[uint]bool)
		for _, c := range comments {
			if c.ParentID != nil && !seen[*c.ParentID] {
				seen[*c.ParentID] = true
				dismissed = append(dismissed, *c.ParentID)
			}
		}

		if err := tx.Model(&model.Comment{}).
			Where("review_id = ? AND source = ? AND status = ?", reviewID, model.CommentSourceUser, model.CommentStatusActive).
			Update("status", model.CommentStatusInactive).Error; err != nil {
			return pairerrors.ErrStorage("failed to bulk soft-delete comments", err)
		}

		if len(dismissed) > 0 {
			if err := tx.Model(&model.Comment{}).
				Where("id IN ? AND source = ?", dismissed, model.CommentSourceAI).
				Update("status", model.CommentStatusDismissed).Error; err != nil {
				return pairerrors.ErrStorage("failed to dismiss parent suggestions", err)
			}
		}
		return nil
	})
	return dismissed, err
}

func (s *commentStore) Restore(id uint) error {
	result := s.db.Model(&model.Comment{}).
		Where("id = ? AND source = ? AND status = ?", id, model.CommentSourceUser, model.CommentStatusInactive).
		Update("status", model.CommentStatusActive)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to restore comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("comment")
	}
	return nil
}

func (s *commentStore) List(reviewID uint, includeDismissed bool) ([]model.Comment, error) {
	query := s.db.Where("review_id = ?", reviewID)
	if !includeDismissed {
		query = query.Where("status NOT IN ?", []model.CommentStatus{model.CommentStatusDismissed, model.CommentStatusInactive})
	}
	var comments []model.Comment
	err := query.Order("created_at ASC").Find(&comments).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list comments", err)
	}
	return comments, nil
}

func (s *commentStore) BulkInsertSuggestions(runID string, suggestions []RawSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	var run model.AnalysisRun
	if err := s.db.First(&run, "id = ?", runID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return pairerrors.ErrNotFound("analysis run")
		}
		return pairerrors.ErrStorage("failed to load analysis run", err)
	}

	rows := make([]model.Comment, 0, len(suggestions))
	for _, raw := range suggestions {
		side := model.CommentSideRight
		if raw.Side == "OLD" {
			side = model.CommentSideLeft
		}

		isFileLevel := raw.Line == nil
		lineEnd := raw.LineEnd
		if !isFileLevel && lineEnd == nil {
			lineEnd = raw.Line
		}

		level := raw.Level
		rows = append(rows, model.Comment{
			ReviewID:     run.ReviewID,
			Source:       model.CommentSourceAI,
			AIRunID:      &runID,
			AILevel:      &level,
			AIConfidence: raw.Confidence,
			Reasoning:    raw.Reasoning,
			File:         raw.File,
			LineStart:    raw.Line,
			LineEnd:      lineEnd,
			Side:         side,
			IsFileLevel:  isFileLevel,
			Type:         raw.Type,
			Title:        raw.Title,
			Body:         raw.Body,
			CommitSHA:    raw.CommitSHA,
			Status:       model.CommentStatusActive,
			VoiceID:      raw.VoiceID,
			IsRaw:        raw.IsRaw,
		})
	}

	if err := s.db.Create(&rows).Error; err != nil {
		return pairerrors.ErrStorage("failed to bulk-insert suggestions", err)
	}
	return nil
}

func (s *commentStore) UpdateSuggestionStatus(id uint, status model.CommentStatus, adoptedAsID *uint) error {
	updates := map[string]interface{}{"status": status}
	if status == model.CommentStatusAdopted {
		if adoptedAsID == nil {
			return pairerrors.ErrInvalidInput("adopted_as_id is required when marking a suggestion adopted")
		}
		updates["adopted_as_id"] = *adoptedAsID
	}
	result := s.db.Model(&model.Comment{}).Where("id = ? AND source = ?", id, model.CommentSourceAI).Updates(updates)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to update suggestion status", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("suggestion")
	}
	return nil
}
