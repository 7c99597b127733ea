package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"cookingsecret/internal/domain"
)

var chatColumns = []string{"id", "user_id", "session_id", "seq", "role", "content", "created_at"}

type ChatRepository struct {
	base
}

func NewChatRepository(b base) domain.ChatRepository {
	b.entity = "chat_message"
	return &ChatRepository{base: b}
}

// History returns the latest limit messages in conversation order. An empty
// sessionID spans every session of the user.
func (r *ChatRepository) History(ctx context.Context, userID, sessionID string, limit int) ([]*domain.ChatMessage, error) {
	where := sq.Eq{"user_id": userID}
	if sessionID != "" {
		where["session_id"] = sessionID
	}

	messages := make([]*domain.ChatMessage, 0)
	err := r.selectAll(ctx, "history", &messages, r.sb.Select(chatColumns...).
		From("chat_messages").
		Where(where).
		OrderBy("seq DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Sessions lists the user's sessions by most recent message. Seq is the
// message time in nanoseconds, which keeps the aggregate driver-neutral.
func (r *ChatRepository) Sessions(ctx context.Context, userID string, limit int) ([]*domain.ChatSession, error) {
	var rows []struct {
		SessionID string `db:"session_id"`
		LastSeq   int64  `db:"last_seq"`
	}
	err := r.selectAll(ctx, "sessions", &rows, r.sb.Select("session_id", "MAX(seq) AS last_seq").
		From("chat_messages").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("session_id").
		OrderBy("last_seq DESC").
		Limit(uint64(limit)))
	if err != nil {
		return nil, err
	}

	sessions := make([]*domain.ChatSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, &domain.ChatSession{
			SessionID:   row.SessionID,
			LastMessage: time.Unix(0, row.LastSeq).UTC(),
		})
	}
	return sessions, nil
}

func (r *ChatRepository) Append(ctx context.Context, messages ...*domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	q := r.sb.Insert("chat_messages").Columns(chatColumns...)
	for _, m := range messages {
		q = q.Values(m.ID, m.UserID, m.SessionID, m.Seq, m.Role, m.Content, m.CreatedAt)
	}
	_, err := r.exec(ctx, "append", q)
	return err
}

func (r *ChatRepository) DeleteSession(ctx context.Context, userID, sessionID string) (int64, error) {
	return r.exec(ctx, "delete_session", r.sb.Delete("chat_messages").
		Where(sq.Eq{"user_id": userID, "session_id": sessionID}))
}
