// Package session keeps per-conversation state: the message history and
// the product currently under discussion.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agrofel/field-assistant/schema"
)

var ErrNotFound = errors.New("session: not found")

type Session struct {
	ID                 string               `json:"id"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Messages           []schema.ChatMessage `json:"messages"`
	LastRecommendation string               `json:"last_recommendation,omitempty"`
}

// Append records one turn and keeps UpdatedAt current.
func (s *Session) Append(role, content string) {
	s.Messages = append(s.Messages, schema.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// RecentTurns returns the last n user/assistant exchanges, oldest first.
func (s *Session) RecentTurns(n int) []schema.ChatMessage {
	if n <= 0 {
		return nil
	}
	limit := n * 2
	if len(s.Messages) <= limit {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-limit:]
}

// Store persists sessions. Implementations are safe for concurrent use.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func newSession() *Session {
	now := time.Now()
	return &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}
