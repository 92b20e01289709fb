// Package model provides database model definitions.
package model

import (
	"time"
)

// LogLevel represents the log level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// RunLogScope identifies what a RunLog entry is scoped to: a review as a
// whole, or one analysis run within it.
type RunLogScope string

const (
	RunLogScopeReview RunLogScope = "review"
	RunLogScopeRun    RunLogScope = "run"
)

// RunLog is a log entry captured by the task log hook and associated with a
// review or analysis run, so its logs can be fetched alongside the record.
type RunLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Scope identification
	Scope   RunLogScope `gorm:"size:20;not null;index" json:"scope"`   // review or run
	ScopeID string      `gorm:"size:20;not null;index" json:"scope_id"` // review_id or run_id

	// Log content
	Level   LogLevel `gorm:"size:10;not null;index" json:"level"`
	Message string   `gorm:"type:text;not null" json:"message"`
	Fields  JSONMap  `gorm:"type:text" json:"fields,omitempty"` // structured log fields as JSON

	// Source information
	Caller string `gorm:"size:255" json:"caller,omitempty"` // file:line of the log call
}

// TableName specifies the table name for RunLog
func (RunLog) TableName() string {
	return "run_logs"
}

// RunLogQuery represents query parameters for listing run logs
type RunLogQuery struct {
	Scope   RunLogScope `json:"scope"`
	ScopeID string      `json:"scope_id"`
	Level   LogLevel    `json:"level,omitempty"`
	Limit   int         `json:"limit,omitempty"`
	Offset  int         `json:"offset,omitempty"`
}
