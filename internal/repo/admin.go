package repo

import (
	"context"
	"fmt"

	"hireloop/internal/models"
)

func (r *Repo) AdminListUsers(ctx context.Context, search string, limit, offset int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any

	if search != "" {
		query += ` WHERE (name LIKE ? OR tg_username LIKE ?)`
		s := "%" + search + "%"
		args = append(args, s, s)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` LIMIT %d OFFSET %d`, limit, offset)

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("admin list users: %w", err)
	}
	return users, nil
}

func (r *Repo) SetUserAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, isAdmin, userID)
	return err
}

func (r *Repo) SetUserBanned(ctx context.Context, userID int64, isBanned bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_banned = ? WHERE id = ?`, isBanned, userID)
	if err != nil {
		return err
	}
	if isBanned {
		_, err = r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	}
	return err
}

func (r *Repo) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	s := &models.AdminStats{}

	counts := []struct {
		dest  *int
		query string
	}{
		{&s.UserCount, `SELECT COUNT(*) FROM users`},
		{&s.ProjectTotal, `SELECT COUNT(*) FROM projects`},
		{&s.ProjectOpen, `SELECT COUNT(*) FROM projects WHERE status = 'open'`},
		{&s.ProjectInProgress, `SELECT COUNT(*) FROM projects WHERE status = 'in_progress'`},
		{&s.ApplicationCount, `SELECT COUNT(*) FROM applications`},
		{&s.MessageCount, `SELECT COUNT(*) FROM messages`},
		{&s.PendingVerification, `SELECT COUNT(*) FROM verifications WHERE status = 'pending'`},
	}
	for _, c := range counts {
		if err := r.db.GetContext(ctx, c.dest, c.query); err != nil {
			return nil, fmt.Errorf("admin stats: %w", err)
		}
	}

	return s, nil
}
