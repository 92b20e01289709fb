package store

import (
	"time"

	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// CouncilStore defines CRUD and MRU bookkeeping for named, reusable voice
// plans.
type CouncilStore interface {
	Create(council *model.Council) error
	GetByID(id string) (*model.Council, error)
	List() ([]model.Council, error)
	Update(council *model.Council) error
	Delete(id string) error

	// TouchLastUsed bumps last_used_at to now, used for MRU ordering.
	TouchLastUsed(id string) error
}

type councilStore struct {
	db *gorm.DB
}

func newCouncilStore(db *gorm.DB) CouncilStore {
	return &councilStore{db: db}
}

func (s *councilStore) Create(council *model.Council) error {
	if council.Name == "" {
		return pairerrors.ErrInvalidInput("council name is required")
	}
	if err := s.db.Create(council).Error; err != nil {
		return pairerrors.ErrStorage("failed to create council", err)
	}
	return nil
}

func (s *councilStore) GetByID(id string) (*model.Council, error) {
	var council model.Council
	err := s.db.First(&council, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("council")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load council", err)
	}
	return &council, nil
}

func (s *councilStore) List() ([]model.Council, error) {
	var councils []model.Council
	err := s.db.Order("last_used_at DESC NULLS LAST").Order("created_at DESC").Find(&councils).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list councils", err)
	}
	return councils, nil
}

func (s *councilStore) Update(council *model.Council) error {
	if council.ID == "" {
		return pairerrors.ErrInvalidInput("council id is required")
	}
	result := s.db.Model(&model.Council{}).Where("id = ?", council.ID).Updates(map[string]interface{}{
		"name":   council.Name,
		"type":   council.Type,
		"config": council.Config,
	})
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to update council", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("council")
	}
	return nil
}

func (s *councilStore) Delete(id string) error {
	result := s.db.Delete(&model.Council{}, "id = ?", id)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to delete council", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("council")
	}
	return nil
}

func (s *councilStore) TouchLastUsed(id string) error {
	now := time.Now().UTC()
	result := s.db.Model(&model.Council{}).Where("id = ?", id).Update("last_used_at", now)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to touch council", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("council")
	}
	return nil
}
