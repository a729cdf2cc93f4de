package repo

import (
	"context"
	"fmt"

	"hireloop/internal/models"
)

func pairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// GetOrCreateConversation returns the two-party conversation between a and b,
// creating it when it does not exist yet.
func (r *Repo) GetOrCreateConversation(ctx context.Context, a, b int64, projectID *int64) (id int64, created bool, err error) {
	if a == b {
		return 0, false, fmt.Errorf("%w: conversation with yourself", ErrConflict)
	}
	key := pairKey(a, b)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Writing first takes the write lock up front, so concurrent callers for
	// the same pair wait on busy_timeout and then see the existing row.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (project_id, pair_key) VALUES (?, ?) ON CONFLICT (pair_key) DO NOTHING`,
		projectID, key,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if err := tx.GetContext(ctx, &id, `SELECT id FROM conversations WHERE pair_key = ?`, key); err != nil {
			return 0, false, fmt.Errorf("find conversation: %w", err)
		}
		return id, false, nil
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, false, fmt.Errorf("conversation id: %w", err)
	}

	for _, uid := range []int64{a, b} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conversation_participants (conversation_id, user_id) VALUES (?, ?)`, id, uid,
		); err != nil {
			return 0, false, fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit: %w", err)
	}
	return id, true, nil
}

const conversationColumns = `c.id, c.project_id, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.sender_id != ? AND m.read = 0) AS unread_count`

// GetConversation loads a conversation as seen by viewerID.
func (r *Repo) GetConversation(ctx context.Context, id, viewerID int64) (*models.Conversation, error) {
	c := &models.Conversation{}
	err := r.db.GetContext(ctx, c, `SELECT `+conversationColumns+` FROM conversations c WHERE c.id = ?`, viewerID, id)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", notFound(err))
	}
	if err := r.fillConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repo) ListConversations(ctx context.Context, userID int64) ([]models.Conversation, error) {
	convs := []models.Conversation{}
	err := r.db.SelectContext(ctx, &convs,
		`SELECT `+conversationColumns+` FROM conversations c
		 JOIN conversation_participants cp ON cp.conversation_id = c.id
		 WHERE cp.user_id = ?
		 ORDER BY c.updated_at DESC, c.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	for i := range convs {
		if err := r.fillConversation(ctx, &convs[i]); err != nil {
			return nil, err
		}
	}
	return convs, nil
}

func (r *Repo) fillConversation(ctx context.Context, c *models.Conversation) error {
	ids, err := r.ConversationParticipants(ctx, c.ID)
	if err != nil {
		return err
	}
	c.ParticipantIDs = ids
	c.Participants = make([]*models.UserSummary, 0, len(ids))
	for _, uid := range ids {
		s, err := r.GetUserSummary(ctx, uid)
		if err != nil {
			return err
		}
		c.Participants = append(c.Participants, s)
	}

	var last []models.Message
	err = r.db.SelectContext(ctx, &last,
		`SELECT `+messageColumns+` FROM messages WHERE conversation_id = ? ORDER BY id DESC LIMIT 1`, c.ID,
	)
	if err != nil {
		return fmt.Errorf("last message: %w", err)
	}
	if len(last) > 0 {
		c.LastMessage = &last[0]
	}
	return nil
}

func (r *Repo) ConversationParticipants(ctx context.Context, conversationID int64) ([]int64, error) {
	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM conversation_participants WHERE conversation_id = ? ORDER BY user_id`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("conversation participants: %w", err)
	}
	return ids, nil
}

func (r *Repo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM conversation_participants WHERE conversation_id = ? AND user_id = ?`,
		conversationID, userID,
	)
	return n > 0, err
}
