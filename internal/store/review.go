package store

import (
	"time"

	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// ReviewStore defines operations on the Review aggregate root.
type ReviewStore interface {
	// CreatePR creates a new PR-backed review.
	CreatePR(review *model.Review) error
	// CreateLocal creates a new local working-tree review.
	CreateLocal(review *model.Review) error

	// Update persists status, summary, name, custom_instructions and
	// submitted_at changes for an existing review.
	Update(review *model.Review) error

	GetByID(id uint) (*model.Review, error)
	GetByPRAndRepository(repository string, prNumber int) (*model.Review, error)
	GetLocalByPathAndSHA(localPath, headSHA string) (*model.Review, error)

	// UpsertLocal finds an existing local review by (local_path, local_head_sha)
	// or creates one, returning it either way.
	UpsertLocal(localPath, headSHA string) (*model.Review, error)

	// ListLocalPaged returns local reviews ordered by updated_at descending,
	// using updated_at as the opaque pagination cursor (pass the zero Time
	// to fetch the first page).
	ListLocalPaged(cursor time.Time, limit int) ([]model.Review, error)

	// Delete removes a review and, in the same transaction, its comments,
	// runs, local diff snapshot and context files.
	Delete(id uint) error
}

type reviewStore struct {
	db *gorm.DB
}

func newReviewStore(db *gorm.DB) ReviewStore {
	return &reviewStore{db: db}
}

func (s *reviewStore) CreatePR(review *model.Review) error {
	if review.Repository == "" || review.PRNumber == nil {
		return pairerrors.ErrInvalidInput("repository and pr_number are required for a pr review")
	}
	review.ReviewType = model.ReviewTypePR
	if err := s.db.Create(review).Error; err != nil {
		return pairerrors.ErrStorage("failed to create review", err)
	}
	return nil
}

func (s *reviewStore) CreateLocal(review *model.Review) error {
	if review.LocalPath == "" || review.LocalHeadSHA == "" {
		return pairerrors.ErrInvalidInput("local_path and local_head_sha are required for a local review")
	}
	review.ReviewType = model.ReviewTypeLocal
	if err := s.db.Create(review).Error; err != nil {
		return pairerrors.ErrStorage("failed to create review", err)
	}
	return nil
}

func (s *reviewStore) Update(review *model.Review) error {
	if review.ID == 0 {
		return pairerrors.ErrInvalidInput("review id is required")
	}
	result := s.db.Model(&model.Review{}).Where("id = ?", review.ID).Updates(map[string]interface{}{
		"status":              review.Status,
		"summary":             review.Summary,
		"name":                review.Name,
		"custom_instructions": review.CustomInstructions,
		"submitted_at":        review.SubmittedAt,
	})
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to update review", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("review")
	}
	return nil
}

func (s *reviewStore) GetByID(id uint) (*model.Review, error) {
	var review model.Review
	err := s.db.First(&review, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("review")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load review", err)
	}
	return &review, nil
}

func (s *reviewStore) GetByPRAndRepository(repository string, prNumber int) (*model.Review, error) {
	var review model.Review
	err := s.db.Where("repository = ? AND pr_number = ?", repository, prNumber).First(&review).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("review")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load review", err)
	}
	return &review, nil
}

func (s *reviewStore) GetLocalByPathAndSHA(localPath, headSHA string) (*model.Review, error) {
	var review model.Review
	err := s.db.Where("local_path = ? AND local_head_sha = ?", localPath, headSHA).First(&review).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("review")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load review", err)
	}
	return &review, nil
}

func (s *reviewStore) UpsertLocal(localPath, headSHA string) (*model.Review, error) {
	if localPath == "" || headSHA == "" {
		return nil, pairerrors.ErrInvalidInput("local_path and local_head_sha are required")
	}

	review := model.Review{
		ReviewType:   model.ReviewTypeLocal,
		LocalPath:    localPath,
		LocalHeadSHA: headSHA,
		Status:       model.ReviewStatusDraft,
	}

	result := s.db.Where("local_path = ? AND local_head_sha = ?", localPath, headSHA).FirstOrCreate(&review)
	if result.Error != nil {
		return nil, pairerrors.ErrStorage("failed to upsert local review", result.Error)
	}
	return &review, nil
}

func (s *reviewStore) ListLocalPaged(cursor time.Time, limit int) ([]model.Review, error) {
	if limit <= 0 {
		limit = 50
	}

	query := s.db.Where("review_type = ?", model.ReviewTypeLocal)
	if !cursor.IsZero() {
		query = query.Where("updated_at < ?", cursor)
	}

	var reviews []model.Review
	err := query.Order("updated_at DESC").Limit(limit).Find(&reviews).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list local reviews", err)
	}
	return reviews, nil
}

func (s *reviewStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Review{}, id)
		if result.Error != nil {
			return pairerrors.ErrStorage("failed to delete review", result.Error)
		}
		if result.RowsAffected == 0 {
			return pairerrors.ErrNotFound("review")
		}
		if err := tx.Where("review_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return pairerrors.ErrStorage("failed to cascade-delete comments", err)
		}
		if err := tx.Where("review_id = ?", id).Delete(&model.AnalysisRun{}).Error; err != nil {
			return pairerrors.ErrStorage("failed to cascade-delete analysis runs", err)
		}
		if err := tx.Where("review_id = ?", id).Delete(&model.LocalDiffSnapshot{}).Error; err != nil {
			return pairerrors.ErrStorage("failed to cascade-delete local diff snapshot", err)
		}
		if err := tx.Where("review_id = ?", id).Delete(&model.ContextFile{}).Error; err != nil {
			return pairerrors.ErrStorage("failed to cascade-delete context files", err)
		}
		return nil
	})
}
