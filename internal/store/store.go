// Package store provides data access layer interfaces and implementations.
// This package abstracts database operations to improve maintainability
// and decouple business logic from specific database implementations.
package store

import "gorm.io/gorm"

// Store aggregates all data store interfaces.
// It provides a single point of access for all database operations.
type Store interface {
	Review()       ReviewStore
	Comment()      CommentStore
	AnalysisRun()  AnalysisRunStore
	LocalDiff()    LocalDiffStore
	Council()      CouncilStore
	ContextFile()  ContextFileStore
	ChatSession()  ChatSessionStore
	RunLog()       RunLogStore
	Settings()     SettingsStore
	RepoInstructions() RepoInstructionsStore

	// DB returns the underlying database connection for advanced operations.
	// Use sparingly - prefer using specific store methods.
	DB() *gorm.DB

	// Transaction executes operations within a database transaction.
	Transaction(fn func(Store) error) error
}

// gormStore implements Store interface using GORM.
type gormStore struct {
	db                  *gorm.DB
	reviewStore         ReviewStore
	commentStore        CommentStore
	analysisRunStore    AnalysisRunStore
	localDiffStore      LocalDiffStore
	councilStore        CouncilStore
	contextFileStore    ContextFileStore
	chatSessionStore    ChatSessionStore
	runLogStore         RunLogStore
	settingsStore       SettingsStore
	repoInstructionsStore RepoInstructionsStore
}

// NewStore creates a new Store instance with GORM backend.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:                  db,
		reviewStore:         newReviewStore(db),
		commentStore:        newCommentStore(db),
		analysisRunStore:    newAnalysisRunStore(db),
		localDiffStore:      newLocalDiffStore(db),
		councilStore:        newCouncilStore(db),
		contextFileStore:    newContextFileStore(db),
		chatSessionStore:    newChatSessionStore(db),
		runLogStore:         newRunLogStore(db),
		settingsStore:       newSettingsStore(db),
		repoInstructionsStore: newRepoInstructionsStore(db),
	}
}

func (s *gormStore) Review() ReviewStore              { return s.reviewStore }
func (s *gormStore) Comment() CommentStore            { return s.commentStore }
func (s *gormStore) AnalysisRun() AnalysisRunStore    { return s.analysisRunStore }
func (s *gormStore) LocalDiff() LocalDiffStore        { return s.localDiffStore }
func (s *gormStore) Council() CouncilStore            { return s.councilStore }
func (s *gormStore) ContextFile() ContextFileStore    { return s.contextFileStore }
func (s *gormStore) ChatSession() ChatSessionStore    { return s.chatSessionStore }
func (s *gormStore) RunLog() RunLogStore              { return s.runLogStore }
func (s *gormStore) Settings() SettingsStore          { return s.settingsStore }
func (s *gormStore) RepoInstructions() RepoInstructionsStore {
	return s.repoInstructionsStore
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txStore := &gormStore{
			db:                  tx,
			reviewStore:         newReviewStore(tx),
			commentStore:        newCommentStore(tx),
			analysisRunStore:    newAnalysisRunStore(tx),
			localDiffStore:      newLocalDiffStore(tx),
			councilStore:        newCouncilStore(tx),
			contextFileStore:    newContextFileStore(tx),
			chatSessionStore:    newChatSessionStore(tx),
			runLogStore:         newRunLogStore(tx),
			settingsStore:       newSettingsStore(tx),
			repoInstructionsStore: newRepoInstructionsStore(tx),
		}
		return fn(txStore)
	})
}
