package repo

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

const SessionTTL = 30 * 24 * time.Hour

func GenerateToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (r *Repo) CreateSession(ctx context.Context, token string, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().Add(SessionTTL).UTC(),
	)
	return err
}

// GetSessionUser returns 0 when the token is unknown or expired.
func (r *Repo) GetSessionUser(ctx context.Context, token string) (int64, error) {
	var userID int64
	err := r.db.GetContext(ctx, &userID,
		`SELECT user_id FROM sessions WHERE token = ? AND expires_at > ?`,
		token, time.Now().UTC(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return userID, err
}

func (r *Repo) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

func (r *Repo) CleanExpiredSessions(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
