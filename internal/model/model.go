// Package model provides database model definitions.
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// StringArray stores a slice of strings as a JSON column.
type StringArray []string

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for StringArray")
	}
	if len(bytes) == 0 {
		*a = StringArray{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// JSONMap stores an arbitrary JSON object as a text column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	if len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// ReviewType distinguishes a PR-backed review from a local working-tree review.
type ReviewType string

const (
	ReviewTypePR    ReviewType = "pr"
	ReviewTypeLocal ReviewType = "local"
)

// ReviewStatus represents the lifecycle status of a Review.
type ReviewStatus string

const (
	ReviewStatusDraft     ReviewStatus = "draft"
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusSubmitted ReviewStatus = "submitted"
)

// Review is the root of an analysis unit: either a pull request or a local
// working-tree diff.
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReviewType ReviewType `gorm:"size:20;not null;index" json:"review_type"`

	// PR identification. Non-null together, exactly when review_type=pr.
	Repository string `gorm:"size:255;uniqueIndex:idx_review_pr,priority:1,where:review_type = 'pr'" json:"repository,omitempty"`
	PRNumber   *int   `gorm:"uniqueIndex:idx_review_pr,priority:2" json:"pr_number,omitempty"`

	// Local identification. Non-null together, exactly when review_type=local.
	LocalPath    string `gorm:"size:1024;uniqueIndex:idx_review_local,priority:1,where:review_type = 'local'" json:"local_path,omitempty"`
	LocalHeadSHA string `gorm:"size:64;uniqueIndex:idx_review_local,priority:2" json:"local_head_sha,omitempty"`

	Status ReviewStatus `gorm:"size:20;not null;default:draft;index" json:"status"`

	Name               *string `gorm:"size:255" json:"name,omitempty"`
	Summary            *string `gorm:"type:text" json:"summary,omitempty"`
	CustomInstructions *string `gorm:"type:text" json:"custom_instructions,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	// Relations
	Runs         []AnalysisRun      `gorm:"foreignKey:ReviewID" json:"runs,omitempty"`
	Comments     []Comment          `gorm:"foreignKey:ReviewID" json:"comments,omitempty"`
	LocalDiff    *LocalDiffSnapshot `gorm:"foreignKey:ReviewID" json:"local_diff,omitempty"`
	ContextFiles []ContextFile      `gorm:"foreignKey:ReviewID" json:"context_files,omitempty"`
}

// TableName overrides the pluralized default so reviews read naturally next
// to the rest of the schema.
func (Review) TableName() string { return "reviews" }

// RunStatus represents the lifecycle status of an Analysis Run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunConfigType distinguishes a single-voice run from a multi-level or
// council-aggregated run.
type RunConfigType string

const (
	RunConfigTypeSingle   RunConfigType = "single"
	RunConfigTypeAdvanced RunConfigType = "advanced"
	RunConfigTypeCouncil  RunConfigType = "council"
)

// AnalysisRun is one invocation of the orchestrator: a single voice, or (for
// advanced/council runs) the parent of a tree of per-voice child runs.
type AnalysisRun struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReviewID uint `gorm:"not null;index" json:"review_id"`

	// Null for a council/advanced parent: the children carry these.
	Provider *string `gorm:"size:100" json:"provider,omitempty"`
	Model    *string `gorm:"size:255" json:"model,omitempty"`
	Tier     *string `gorm:"size:20" json:"tier,omitempty"`

	Status RunStatus `gorm:"size:20;not null;default:running;index" json:"status"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Summary          *string `gorm:"type:text" json:"summary,omitempty"`
	TotalSuggestions int     `gorm:"default:0" json:"total_suggestions"`
	FilesAnalyzed    int     `gorm:"default:0" json:"files_analyzed"`

	HeadSHA string `gorm:"size:64" json:"head_sha"`

	CustomInstructions   *string `gorm:"type:text" json:"custom_instructions,omitempty"`
	RepoInstructions     *string `gorm:"type:text" json:"repo_instructions,omitempty"`
	RequestInstructions  *string `gorm:"type:text" json:"request_instructions,omitempty"`

	ParentRunID *string       `gorm:"size:20;index" json:"parent_run_id,omitempty"`
	ConfigType  RunConfigType `gorm:"size:20;not null;default:single" json:"config_type"`

	// LevelsConfig is an opaque snapshot of the voice plan used for this run.
	LevelsConfig JSONMap `gorm:"type:text" json:"levels_config,omitempty"`

	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`

	// Relations
	Review   Review        `json:"-"`
	Children []AnalysisRun `gorm:"foreignKey:ParentRunID" json:"children,omitempty"`
}

func (AnalysisRun) TableName() string { return "analysis_runs" }

// CommentSource distinguishes a user-authored comment from an AI suggestion.
type CommentSource string

const (
	CommentSourceUser CommentSource = "user"
	CommentSourceAI   CommentSource = "ai"
)

// CommentSide identifies which side of a diff a comment anchors to.
type CommentSide string

const (
	CommentSideLeft  CommentSide = "LEFT"
	CommentSideRight CommentSide = "RIGHT"
)

// CommentStatus represents the lifecycle status of a Comment.
type CommentStatus string

const (
	CommentStatusActive    CommentStatus = "active"
	CommentStatusDismissed CommentStatus = "dismissed"
	CommentStatusAdopted   CommentStatus = "adopted"
	CommentStatusSubmitted CommentStatus = "submitted"
	CommentStatusDraft     CommentStatus = "draft"
	CommentStatusInactive  CommentStatus = "inactive"
)

// Comment is the unified table for both user-authored review comments and AI
// suggestions produced by analysis runs.
type Comment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReviewID uint          `gorm:"not null;index" json:"review_id"`
	Source   CommentSource `gorm:"size:10;not null;index" json:"source"`
	Author   string        `gorm:"size:255" json:"author,omitempty"`

	// AI provenance, set only when source=ai.
	AIRunID      *string  `gorm:"size:20;index" json:"ai_run_id,omitempty"`
	AILevel      *int     `json:"ai_level,omitempty"`
	AIConfidence *float64 `json:"ai_confidence,omitempty"`
	Reasoning    *string  `gorm:"type:text" json:"reasoning,omitempty"`

	File         string      `gorm:"size:1024;not null" json:"file"`
	LineStart    *int        `json:"line_start,omitempty"`
	LineEnd      *int        `json:"line_end,omitempty"`
	Side         CommentSide `gorm:"size:5" json:"side,omitempty"`
	DiffPosition *int        `json:"diff_position,omitempty"`
	IsFileLevel  bool        `gorm:"default:false" json:"is_file_level"`

	Type      string  `gorm:"size:50" json:"type,omitempty"`
	Title     string  `gorm:"size:255" json:"title,omitempty"`
	Body      string  `gorm:"type:text" json:"body"`
	CommitSHA *string `gorm:"size:64" json:"commit_sha,omitempty"`

	Status CommentStatus `gorm:"size:20;not null;default:active;index" json:"status"`

	ParentID     *uint `gorm:"index" json:"parent_id,omitempty"`
	AdoptedAsID  *uint `gorm:"index" json:"adopted_as_id,omitempty"`

	VoiceID *string `gorm:"size:100" json:"voice_id,omitempty"`
	IsRaw   bool    `gorm:"default:false" json:"is_raw"`

	// Relations
	Review Review `json:"-"`
}

func (Comment) TableName() string { return "comments" }

// LocalDiffSnapshot caches the captured diff text for a local review, keyed
// one-to-one with its Review.
type LocalDiffSnapshot struct {
	ReviewID   uint      `gorm:"primarykey" json:"review_id"`
	DiffText   string    `gorm:"type:text;not null" json:"diff_text"`
	Stats      JSONMap   `gorm:"type:text" json:"stats,omitempty"`
	Digest     string    `gorm:"size:64;not null" json:"digest"`
	CapturedAt time.Time `json:"captured_at"`
}

func (LocalDiffSnapshot) TableName() string { return "local_diff_snapshots" }

// CouncilType distinguishes a multi-voice council plan from a single-voice
// advanced plan.
type CouncilType string

const (
	CouncilTypeCouncil  CouncilType = "council"
	CouncilTypeAdvanced CouncilType = "advanced"
)

// Council is a named, reusable voice plan that can be attached to a future
// analysis run.
type Council struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string      `gorm:"size:255;not null" json:"name"`
	Type CouncilType `gorm:"size:20;not null" json:"type"`

	// Config is an opaque JSON object: level -> enabled/disabled and a list
	// of {provider, model, tier} voices.
	Config JSONMap `gorm:"type:text" json:"config"`

	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func (Council) TableName() string { return "councils" }

// ContextFile is a user-pinned line range from a non-diff file, attached to a
// review for extra context during analysis.
type ContextFile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ReviewID  uint    `gorm:"not null;index" json:"review_id"`
	File      string  `gorm:"size:1024;not null" json:"file"`
	LineStart int     `gorm:"not null" json:"line_start"`
	LineEnd   int     `gorm:"not null" json:"line_end"`
	Label     *string `gorm:"size:255" json:"label,omitempty"`
}

func (ContextFile) TableName() string { return "context_files" }

// ChatSessionStatus represents the lifecycle status of a discussion thread
// attached to a comment.
type ChatSessionStatus string

const (
	ChatSessionStatusOpen   ChatSessionStatus = "open"
	ChatSessionStatusClosed ChatSessionStatus = "closed"
)

// ChatSession is a discussion thread anchored to a single comment, used to
// let a reviewer interrogate an AI suggestion before acting on it.
type ChatSession struct {
	ID        string         `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CommentID uint              `gorm:"not null;index" json:"comment_id"`
	Status    ChatSessionStatus `gorm:"size:20;not null;default:open" json:"status"`

	// Relations
	Messages []ChatMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessageRole identifies the speaker of a ChatMessage.
type ChatMessageRole string

const (
	ChatMessageRoleUser      ChatMessageRole = "user"
	ChatMessageRoleAssistant ChatMessageRole = "assistant"
)

// ChatMessage is a single turn within a ChatSession.
type ChatMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SessionID string          `gorm:"size:20;not null;index" json:"session_id"`
	Role      ChatMessageRole `gorm:"size:20;not null" json:"role"`
	Body      string          `gorm:"type:text;not null" json:"body"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// AllModels returns all models for auto-migration. GORM's AutoMigrate
// handles table/column creation from these struct tags; the forward-only
// ladder in internal/database/migrations.go layers on indexes and changes
// AutoMigrate can't express.
func AllModels() []interface{} {
	models := []interface{}{
		&Review{},
		&AnalysisRun{},
		&Comment{},
		&LocalDiffSnapshot{},
		&Council{},
		&ContextFile{},
		&ChatSession{},
		&ChatMessage{},
		&RunLog{},
		&RepoInstructions{},
	}
	models = append(models, SettingsAllModels()...)
	return models
}
