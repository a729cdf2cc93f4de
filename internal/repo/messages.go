package repo

import (
	"context"
	"fmt"

	"hireloop/internal/models"
)

const messageColumns = `id, conversation_id, sender_id, content, read, created_at`

func (r *Repo) CreateMessage(ctx context.Context, conversationID, senderID int64, content string) (*models.Message, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, sender_id, content) VALUES (?, ?, ?)`,
		conversationID, senderID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, _ := res.LastInsertId()

	if _, err := r.db.ExecContext(ctx,
		`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, conversationID,
	); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	m := &models.Message{}
	if err := r.db.GetContext(ctx, m, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// ListMessages returns the conversation's messages oldest first.
func (r *Repo) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+` FROM messages WHERE conversation_id = ? ORDER BY id`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// MarkConversationRead flags every message readerID did not send as read.
func (r *Repo) MarkConversationRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read = 1 WHERE conversation_id = ? AND sender_id != ? AND read = 0`,
		conversationID, readerID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repo) UnreadMessageCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM messages m
		 JOIN conversation_participants cp ON cp.conversation_id = m.conversation_id
		 WHERE cp.user_id = ? AND m.sender_id != ? AND m.read = 0`,
		userID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}
