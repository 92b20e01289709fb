// Package database provides database initialization and connection management.
package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pairreview/pairreview/pkg/errors"
	"github.com/pairreview/pairreview/pkg/logger"
)

// schemaMigration is one step in the forward-only migration ladder. Version
// numbers must be contiguous starting at 1 and are tracked in SQLite's
// PRAGMA user_version, which survives independent of GORM's own migration
// state.
type schemaMigration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// migrations is the ladder of schema migrations, in order. Append new
// entries here; never reorder or remove a migration that has shipped.
var migrations = []schemaMigration{
	{
		version: 1,
		name:    "index comments by review and status",
		up: func(tx *gorm.DB) error {
			return tx.Exec(
				"CREATE INDEX IF NOT EXISTS idx_comments_review_status ON comments(review_id, status)",
			).Error
		},
	},
	{
		version: 2,
		name:    "index analysis_runs by review and parent",
		up: func(tx *gorm.DB) error {
			return tx.Exec(
				"CREATE INDEX IF NOT EXISTS idx_analysis_runs_review_parent ON analysis_runs(review_id, parent_run_id)",
			).Error
		},
	},
}

// runMigrations applies every migration whose version is greater than the
// database's current PRAGMA user_version, in order, each in its own
// transaction. It is safe to call on every startup.
func runMigrations(db *gorm.DB) error {
	current, err := schemaVersion(db)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBMigration, "failed to read schema version", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		logger.Info("applying schema migration", zap.Int("version", m.version), zap.String("name", m.name))

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return setSchemaVersion(tx, m.version)
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeDBMigration,
				fmt.Sprintf("schema migration %d (%s) failed", m.version, m.name), err)
		}
	}

	return nil
}

func schemaVersion(db *gorm.DB) (int, error) {
	var version int
	if err := db.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *gorm.DB, version int) error {
	return tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)).Error
}
