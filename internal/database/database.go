// Package database provides database initialization and connection management.
// It uses GORM with SQLite for embedded storage, with driver abstraction
// for future extensibility to support other relational databases.
package database

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/pkg/errors"
	"github.com/pairreview/pairreview/pkg/logger"
)

const (
	// DefaultDBPath is the default database file path, relative to the
	// working directory the orchestrator was started from.
	DefaultDBPath = "./.pairreview/pairreview.db"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init initializes the database connection and performs auto-migration
// using DefaultDBPath. Safe to call multiple times; only the first call
// takes effect.
func Init() error {
	return InitWithPath(DefaultDBPath)
}

// InitWithPath initializes the database with a custom path. Primarily for
// testing and for callers that override storage location via config.
func InitWithPath(dbPath string) error {
	var initErr error
	once.Do(func() {
		initErr = initDB(dbPath)
	})
	return initErr
}

func initDB(dbPath string) error {
	logger.Info("initializing database", zap.String("path", dbPath))

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create database directory", zap.Error(err), zap.String("dir", dir))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to create database directory", err)
	}

	driver := &SQLiteDriver{}
	gormLog := gormlogger.Default.LogMode(gormlogger.Silent)

	dialector, err := driver.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to open database", err)
	}

	db, err = gorm.Open(dialector, &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to connect to database", err)
	}

	// Foreign keys stay off until after migration completes, so that
	// AutoMigrate doesn't choke on ordering between tables.
	if err := driver.PreMigrationConfig(db); err != nil {
		logger.Error("failed to apply pre-migration config", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to apply pre-migration config", err)
	}

	if err := migrate(); err != nil {
		return err
	}

	if err := driver.PostMigrationConfig(db); err != nil {
		logger.Error("failed to apply post-migration config", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to apply post-migration config", err)
	}

	logger.Info("database initialized successfully", zap.String("driver", driver.Name()))
	return nil
}

func migrate() error {
	logger.Info("running database migrations")

	models := model.AllModels()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("failed to run auto-migration", zap.Error(err))
		return errors.Wrap(errors.ErrCodeDBMigration, "failed to run auto-migration", err)
	}

	if err := runMigrations(db); err != nil {
		logger.Error("failed to run schema migrations", zap.Error(err))
		return err
	}

	logger.Info("database migrations completed", zap.Int("models", len(models)))
	return nil
}

// Get returns the database instance. Panics if not yet initialized.
func Get() *gorm.DB {
	if db == nil {
		panic("database not initialized, call Init first")
	}
	return db
}

// Close closes the database connection.
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	logger.Info("closing database connection")
	return sqlDB.Close()
}

// ResetForTesting resets the database state so tests can reinitialize it.
// WARNING: only use in tests.
func ResetForTesting() {
	if db != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		db = nil
	}
	once = sync.Once{}
}

// Transaction executes a function within a database transaction.
func Transaction(fn func(tx *gorm.DB) error) error {
	return Get().Transaction(fn)
}

// HealthCheck performs a simple connectivity check on the database.
func HealthCheck() error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(errors.ErrCodeDBConnection, "failed to get database connection", err)
	}
	return sqlDB.Ping()
}
