package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hireloop/internal/models"
)

const userColumns = `id, tg_id, tg_username, name, role, tg_chat_id, onboarded, is_admin, is_banned, created_at, updated_at`

func (r *Repo) UpsertUser(ctx context.Context, tgID int64, tgUsername, name string) (user *models.User, isNew bool, err error) {
	var id int64
	err = r.db.GetContext(ctx, &id, `SELECT id FROM users WHERE tg_id = ?`, tgID)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO users (tg_id, tg_username, name) VALUES (?, ?, ?)`,
			tgID, tgUsername, name,
		)
		if err != nil {
			return nil, false, fmt.Errorf("insert user: %w", err)
		}
		id, _ = res.LastInsertId()
		isNew = true
	} else if err != nil {
		return nil, false, fmt.Errorf("query user: %w", err)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE users SET tg_username = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			tgUsername, id,
		)
		if err != nil {
			return nil, false, fmt.Errorf("update user: %w", err)
		}
	}

	user, err = r.GetUser(ctx, id)
	return user, isNew, err
}

func (r *Repo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	err := r.db.GetContext(ctx, u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", notFound(err))
	}
	return u, nil
}

func (r *Repo) GetUserByTgID(ctx context.Context, tgID int64) (*models.User, error) {
	u := &models.User{}
	err := r.db.GetContext(ctx, u, `SELECT `+userColumns+` FROM users WHERE tg_id = ?`, tgID)
	if err != nil {
		return nil, fmt.Errorf("get user by tg id: %w", notFound(err))
	}
	return u, nil
}

func (r *Repo) GetUserSummary(ctx context.Context, id int64) (*models.UserSummary, error) {
	s := &models.UserSummary{}
	err := r.db.GetContext(ctx, s, `SELECT id, name, role, tg_username FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get user summary: %w", notFound(err))
	}
	return s, nil
}

// CompleteOnboarding sets the role once. A user who already has a role keeps it.
func (r *Repo) CompleteOnboarding(ctx context.Context, userID int64, name string, role models.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, role = ?, onboarded = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND role = ''`,
		name, role, userID,
	)
	if err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *Repo) SetTgChatID(ctx context.Context, userID, chatID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET tg_chat_id = ? WHERE id = ?`, chatID, userID)
	return err
}
