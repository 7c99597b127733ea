package domain

import (
	"context"
	"time"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID        string    `json:"-" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	SessionID string    `json:"-" db:"session_id"`
	Seq       int64     `json:"-" db:"seq"`
	Role      ChatRole  `json:"role" db:"role"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ChatSession struct {
	SessionID   string    `json:"session_id" db:"session_id"`
	LastMessage time.Time `json:"last_message" db:"last_message"`
}

type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ChatProvider is the external model behind the chat feature.
type ChatProvider interface {
	Send(ctx context.Context, systemPrompt string, history []*ChatMessage, message string) (string, error)
}

type ChatRepository interface {
	History(ctx context.Context, userID, sessionID string, limit int) ([]*ChatMessage, error)
	Sessions(ctx context.Context, userID string, limit int) ([]*ChatSession, error)
	Append(ctx context.Context, messages ...*ChatMessage) error
	DeleteSession(ctx context.Context, userID, sessionID string) (int64, error)
}

type ChatService interface {
	Send(ctx context.Context, actor *User, sessionID, message string) (*ChatReply, error)
	History(ctx context.Context, actor *User, sessionID string) ([]*ChatMessage, error)
	Sessions(ctx context.Context, actor *User) ([]*ChatSession, error)
	DeleteSession(ctx context.Context, actor *User, sessionID string) (int64, error)
}
