// Package store provides data access operations for all models.
package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pairreview/pairreview/pkg/logger"
)

const (
	// DefaultRunLogRetentionDays is the default number of days to retain run logs
	DefaultRunLogRetentionDays = 30
	// RunLogCleanupSchedule is the cron schedule for run log cleanup (daily at 2 AM)
	RunLogCleanupSchedule = "0 2 * * *" // Every day at 2:00 AM
)

// RunLogCleanupService manages periodic cleanup of old run logs.
type RunLogCleanupService struct {
	store         RunLogStore
	cron          *cron.Cron
	retentionDays int
	entryID       cron.EntryID
	mu            sync.RWMutex
}

// NewRunLogCleanupService creates a new run log cleanup service.
func NewRunLogCleanupService(store RunLogStore, retentionDays int) *RunLogCleanupService {
	if retentionDays <= 0 {
		retentionDays = DefaultRunLogRetentionDays
	}

	return &RunLogCleanupService{
		store:         store,
		cron:          cron.New(),
		retentionDays: retentionDays,
	}
}

// Start starts the cleanup service with scheduled cleanup tasks.
func (s *RunLogCleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(RunLogCleanupSchedule, s.cleanup)
	if err != nil {
		logger.Error("failed to schedule run log cleanup", zap.Error(err))
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	logger.Info("run log cleanup service started",
		zap.String("schedule", RunLogCleanupSchedule),
		zap.Int("retention_days", s.retentionDays),
	)

	go s.cleanup()

	return nil
}

// Stop stops the cleanup service gracefully.
func (s *RunLogCleanupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		logger.Info("stopping run log cleanup service")
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("run log cleanup service stopped")
	}
}

func (s *RunLogCleanupService) cleanup() {
	logger.Info("starting run log cleanup", zap.Int("retention_days", s.retentionDays))

	startTime := time.Now()
	deletedCount, err := s.store.DeleteOlderThan(s.retentionDays)
	if err != nil {
		logger.Error("failed to cleanup old run logs",
			zap.Int("retention_days", s.retentionDays),
			zap.Error(err),
		)
		return
	}

	logger.Info("run log cleanup completed",
		zap.Int64("deleted_count", deletedCount),
		zap.Int("retention_days", s.retentionDays),
		zap.Duration("duration", time.Since(startTime)),
	)
}

// SetRetentionDays updates the retention period (takes effect on next cleanup).
func (s *RunLogCleanupService) SetRetentionDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days <= 0 {
		days = DefaultRunLogRetentionDays
	}

	s.retentionDays = days
	logger.Info("run log retention days updated", zap.Int("retention_days", days))
}
