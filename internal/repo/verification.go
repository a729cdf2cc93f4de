package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hireloop/internal/models"
)

const verificationColumns = `user_id, status, document_type, document_url, note, review_note, submitted_at, reviewed_at`

// GetVerification returns an unverified record for users who never submitted.
func (r *Repo) GetVerification(ctx context.Context, userID int64) (*models.Verification, error) {
	v := &models.Verification{}
	err := r.db.GetContext(ctx, v, `SELECT `+verificationColumns+` FROM verifications WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return &models.Verification{UserID: userID, Status: models.VerificationUnverified}, nil
		}
		return nil, fmt.Errorf("get verification: %w", err)
	}
	return v, nil
}

// SubmitVerification moves the user to pending. Pending and verified users cannot resubmit.
func (r *Repo) SubmitVerification(ctx context.Context, userID int64, documentType, documentURL, note string) (*models.Verification, error) {
	current, err := r.GetVerification(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.VerificationPending || current.Status == models.VerificationVerified {
		return nil, fmt.Errorf("%w: verification is %s", ErrConflict, current.Status)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO verifications (user_id, status, document_type, document_url, note, review_note, submitted_at, reviewed_at)
		 VALUES (?, 'pending', ?, ?, ?, '', ?, NULL)
		 ON CONFLICT(user_id) DO UPDATE SET
			status = 'pending', document_type = excluded.document_type, document_url = excluded.document_url,
			note = excluded.note, review_note = '', submitted_at = excluded.submitted_at, reviewed_at = NULL`,
		userID, documentType, documentURL, note, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("submit verification: %w", err)
	}
	return r.GetVerification(ctx, userID)
}

// ReviewVerification decides a pending verification.
func (r *Repo) ReviewVerification(ctx context.Context, userID int64, status, reviewNote string) (*models.Verification, error) {
	if status != models.VerificationVerified && status != models.VerificationRejected {
		return nil, fmt.Errorf("%w: review status %q", ErrInvalidTransition, status)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE verifications SET status = ?, review_note = ?, reviewed_at = ? WHERE user_id = ? AND status = 'pending'`,
		status, reviewNote, time.Now().UTC(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("review verification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: no pending verification", ErrInvalidTransition)
	}
	return r.GetVerification(ctx, userID)
}

func (r *Repo) ListVerifications(ctx context.Context, status string) ([]models.Verification, error) {
	out := []models.Verification{}
	query := `SELECT ` + verificationColumns + ` FROM verifications`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at`
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return out, nil
}
