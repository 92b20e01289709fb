package store

import (
	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// RepoInstructionsStore defines operations on per-repository review
// instructions, looked up by repository by the orchestrator when
// assembling a provider prompt.
type RepoInstructionsStore interface {
	Get(repository string) (*model.RepoInstructions, error)
	Upsert(repository, instructions string) error
	Delete(repository string) error
}

type repoInstructionsStore struct {
	db *gorm.DB
}

func newRepoInstructionsStore(db *gorm.DB) RepoInstructionsStore {
	return &repoInstructionsStore{db: db}
}

func (s *repoInstructionsStore) Get(repository string) (*model.RepoInstructions, error) {
	var ri model.RepoInstructions
	err := s.db.Where("repository = ?", repository).First(&ri).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("repo instructions")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load repo instructions", err)
	}
	return &ri, nil
}

func (s *repoInstructionsStore) Upsert(repository, instructions string) error {
	if repository == "" {
		return pairerrors.ErrInvalidInput("repository is required")
	}

	var ri model.RepoInstructions
	err := s.db.Where("repository = ?", repository).First(&ri).Error
	if err == gorm.ErrRecordNotFound {
		ri = model.RepoInstructions{Repository: repository, Instructions: instructions}
		if err := s.db.Create(&ri).Error; err != nil {
			return pairerrors.ErrStorage("failed to create repo instructions", err)
		}
		return nil
	}
	if err != nil {
		return pairerrors.ErrStorage("failed to load repo instructions", err)
	}

	ri.Instructions = instructions
	if err := s.db.Save(&ri).Error; err != nil {
		return pairerrors.ErrStorage("failed to update repo instructions", err)
	}
	return nil
}

func (s *repoInstructionsStore) Delete(repository string) error {
	result := s.db.Where("repository = ?", repository).Delete(&model.RepoInstructions{})
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to delete repo instructions", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("repo instructions")
	}
	return nil
}
