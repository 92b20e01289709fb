package store

import (
	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// LocalDiffStore defines operations on the cached local-review diff snapshot.
type LocalDiffStore interface {
	// Save upserts the one diff snapshot belonging to a review.
	Save(snapshot *model.LocalDiffSnapshot) error
	Load(reviewID uint) (*model.LocalDiffSnapshot, error)
}

type localDiffStore struct {
	db *gorm.DB
}

func newLocalDiffStore(db *gorm.DB) LocalDiffStore {
	return &localDiffStore{db: db}
}

func (s *localDiffStore) Save(snapshot *model.LocalDiffSnapshot) error {
	if snapshot.ReviewID == 0 {
		return pairerrors.ErrInvalidInput("review_id is required")
	}
	err := s.db.Save(snapshot).Error
	if err != nil {
		return pairerrors.ErrStorage("failed to save local diff snapshot", err)
	}
	return nil
}

func (s *localDiffStore) Load(reviewID uint) (*model.LocalDiffSnapshot, error) {
	var snapshot model.LocalDiffSnapshot
	err := s.db.First(&snapshot, "review_id = ?", reviewID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("local diff snapshot")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load local diff snapshot", err)
	}
	return &snapshot, nil
}
