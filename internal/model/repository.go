// Package model defines the data models for the application.
package model

import (
	"time"

	"gorm.io/gorm"
)

// RepoInstructions stores repository-level custom instructions, looked up by
// repository when the orchestrator resolves repo_instructions for a run.
type RepoInstructions struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Repository identification (owner/name, used as a unique key)
	Repository string `gorm:"size:512;not null;uniqueIndex" json:"repository"`

	Instructions string `gorm:"type:text" json:"instructions,omitempty"`
}

func (RepoInstructions) TableName() string { return "repo_instructions" }

// EnsureRepoInstructions ensures a RepoInstructions record exists for the
// given repository. If it doesn't exist, creates an empty one.
// Thread-safe: uses GORM's FirstOrCreate which handles concurrent creation
// gracefully via the unique index on repository.
func EnsureRepoInstructions(db *gorm.DB, repository string) (uint, error) {
	if repository == "" {
		return 0, nil
	}

	ri := RepoInstructions{Repository: repository}

	result := db.Where("repository = ?", repository).FirstOrCreate(&ri)
	if result.Error != nil {
		return 0, result.Error
	}

	return ri.ID, nil
}
