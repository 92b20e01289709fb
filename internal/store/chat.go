package store

import (
	"gorm.io/gorm"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"

	"github.com/pairreview/pairreview/internal/model"
)

// ChatSessionStore defines operations on discussion threads attached to
// comments.
type ChatSessionStore interface {
	CreateSession(session *model.ChatSession) error
	GetSession(id string) (*model.ChatSession, error)
	GetMessages(sessionID string) ([]model.ChatMessage, error)
	AppendMessage(message *model.ChatMessage) error
	UpdateSessionStatus(id string, status model.ChatSessionStatus) error
	DeleteSession(id string) error

	// ListCommentsWithSessions returns the ids of comments in a review that
	// have a chat session with at least one message.
	ListCommentsWithSessions(reviewID uint) ([]uint, error)
}

type chatSessionStore struct {
	db *gorm.DB
}

func newChatSessionStore(db *gorm.DB) ChatSessionStore {
	return &chatSessionStore{db: db}
}

func (s *chatSessionStore) CreateSession(session *model.ChatSession) error {
	if session.ID == "" {
		return pairerrors.ErrInvalidInput("chat session id is required")
	}
	if session.CommentID == 0 {
		return pairerrors.ErrInvalidInput("comment_id is required")
	}
	if session.Status == "" {
		session.Status = model.ChatSessionStatusOpen
	}
	if err := s.db.Create(session).Error; err != nil {
		return pairerrors.ErrStorage("failed to create chat session", err)
	}
	return nil
}

func (s *chatSessionStore) GetSession(id string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := s.db.First(&session, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, pairerrors.ErrNotFound("chat session")
	}
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load chat session", err)
	}
	return &session, nil
}

func (s *chatSessionStore) GetMessages(sessionID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := s.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to load chat messages", err)
	}
	return messages, nil
}

func (s *chatSessionStore) AppendMessage(message *model.ChatMessage) error {
	if message.SessionID == "" {
		return pairerrors.ErrInvalidInput("session_id is required")
	}
	if err := s.db.Create(message).Error; err != nil {
		return pairerrors.ErrStorage("failed to append chat message", err)
	}
	return nil
}

func (s *chatSessionStore) UpdateSessionStatus(id string, status model.ChatSessionStatus) error {
	result := s.db.Model(&model.ChatSession{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return pairerrors.ErrStorage("failed to update chat session status", result.Error)
	}
	if result.RowsAffected == 0 {
		return pairerrors.ErrNotFound("chat session")
	}
	return nil
}

func (s *chatSessionStore) DeleteSession(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.ChatSession{}, "id = ?", id)
		if result.Error != nil {
			return pairerrors.ErrStorage("failed to delete chat session", result.Error)
		}
		if result.RowsAffected == 0 {
			return pairerrors.ErrNotFound("chat session")
		}
		if err := tx.Where("session_id = ?", id).Delete(&model.ChatMessage{}).Error; err != nil {
			return pairerrors.ErrStorage("failed to cascade-delete chat messages", err)
		}
		return nil
	})
}

func (s *chatSessionStore) ListCommentsWithSessions(reviewID uint) ([]uint, error) {
	var commentIDs []uint
	err := s.db.Table("comments").
		Select("DISTINCT comments.id").
		Joins("JOIN chat_sessions ON chat_sessions.comment_id = comments.id").
		Joins("JOIN chat_messages ON chat_messages.session_id = chat_sessions.id").
		Where("comments.review_id = ?", reviewID).
		Scan(&commentIDs).Error
	if err != nil {
		return nil, pairerrors.ErrStorage("failed to list commented threads", err)
	}
	return commentIDs, nil
}
