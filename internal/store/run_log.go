// Package store provides data access operations for all models.
package store

import (
	"gorm.io/gorm"

	"github.com/pairreview/pairreview/internal/model"
)

// RunLogStore defines operations for RunLog. It also implements
// logger.RunLogWriter so the logging hook can write straight through to
// storage.
type RunLogStore interface {
	// Write implements logger.RunLogWriter for batch writing logs.
	Write(logs []model.RunLog) error

	Create(log *model.RunLog) error
	BatchCreate(logs []model.RunLog) error

	GetByScope(scope model.RunLogScope, scopeID string) ([]model.RunLog, error)
	GetByScopeWithPagination(scope model.RunLogScope, scopeID string, page, pageSize int) ([]model.RunLog, int64, error)
	GetByScopeWithLevel(scope model.RunLogScope, scopeID string, level model.LogLevel) ([]model.RunLog, error)
	GetByScopeWithLevelAndAbove(scope model.RunLogScope, scopeID string, level model.LogLevel) ([]model.RunLog, error)
	GetLatestByScope(scope model.RunLogScope, scopeID string, limit int) ([]model.RunLog, error)
	DeleteByScope(scope model.RunLogScope, scopeID string) error
	DeleteOlderThan(days int) (int64, error)
	CountByScope(scope model.RunLogScope, scopeID string) (int64, error)
}

type runLogStore struct {
	db *gorm.DB
}

func newRunLogStore(db *gorm.DB) RunLogStore {
	return &runLogStore{db: db}
}

func (s *runLogStore) Write(logs []model.RunLog) error {
	return s.BatchCreate(logs)
}

func (s *runLogStore) Create(log *model.RunLog) error {
	return s.db.Create(log).Error
}

func (s *runLogStore) BatchCreate(logs []model.RunLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.Create(&logs).Error
}

func (s *runLogStore) GetByScope(scope model.RunLogScope, scopeID string) ([]model.RunLog, error) {
	var logs []model.RunLog
	err := s.db.Where("scope = ? AND scope_id = ?", scope, scopeID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (s *runLogStore) GetByScopeWithPagination(scope model.RunLogScope, scopeID string, page, pageSize int) ([]model.RunLog, int64, error) {
	var logs []model.RunLog
	var total int64

	query := s.db.Model(&model.RunLog{}).Where("scope = ? AND scope_id = ?", scope, scopeID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at ASC").Offset(offset).Limit(pageSize).Find(&logs).Error
	return logs, total, err
}

func (s *runLogStore) GetByScopeWithLevel(scope model.RunLogScope, scopeID string, level model.LogLevel) ([]model.RunLog, error) {
	var logs []model.RunLog
	err := s.db.Where("scope = ? AND scope_id = ? AND level = ?", scope, scopeID, level).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// GetByScopeWithLevelAndAbove retrieves logs at or above a specified level.
// Level priority: debug < info < warn < error < fatal
func (s *runLogStore) GetByScopeWithLevelAndAbove(scope model.RunLogScope, scopeID string, level model.LogLevel) ([]model.RunLog, error) {
	var logs []model.RunLog
	levels := levelsAtAndAbove(level)
	err := s.db.Where("scope = ? AND scope_id = ? AND level IN ?", scope, scopeID, levels).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (s *runLogStore) GetLatestByScope(scope model.RunLogScope, scopeID string, limit int) ([]model.RunLog, error) {
	var logs []model.RunLog
	err := s.db.Where("scope = ? AND scope_id = ?", scope, scopeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error

	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, err
}

func (s *runLogStore) DeleteByScope(scope model.RunLogScope, scopeID string) error {
	return s.db.Where("scope = ? AND scope_id = ?", scope, scopeID).
		Delete(&model.RunLog{}).Error
}

func (s *runLogStore) DeleteOlderThan(days int) (int64, error) {
	result := s.db.Exec(
		"DELETE FROM run_logs WHERE created_at < datetime('now', '-' || ? || ' days')",
		days,
	)
	return result.RowsAffected, result.Error
}

func (s *runLogStore) CountByScope(scope model.RunLogScope, scopeID string) (int64, error) {
	var count int64
	err := s.db.Model(&model.RunLog{}).
		Where("scope = ? AND scope_id = ?", scope, scopeID).
		Count(&count).Error
	return count, err
}

func levelsAtAndAbove(level model.LogLevel) []model.LogLevel {
	switch level {
	case model.LogLevelDebug:
		return []model.LogLevel{model.LogLevelDebug, model.LogLevelInfo, model.LogLevelWarn, model.LogLevelError, model.LogLevelFatal}
	case model.LogLevelInfo:
		return []model.LogLevel{model.LogLevelInfo, model.LogLevelWarn, model.LogLevelError, model.LogLevelFatal}
	case model.LogLevelWarn:
		return []model.LogLevel{model.LogLevelWarn, model.LogLevelError, model.LogLevelFatal}
	case model.LogLevelError:
		return []model.LogLevel{model.LogLevelError, model.LogLevelFatal}
	case model.LogLevelFatal:
		return []model.LogLevel{model.LogLevelFatal}
	default:
		return []model.LogLevel{model.LogLevelDebug, model.LogLevelInfo, model.LogLevelWarn, model.LogLevelError, model.LogLevelFatal}
	}
}
