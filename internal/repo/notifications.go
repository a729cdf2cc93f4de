package repo

import (
	"context"
	"fmt"

	"hireloop/internal/models"
)

const (
	NotifyNewApplication       = "new_application"
	NotifyApplicationAccepted  = "application_accepted"
	NotifyApplicationRejected  = "application_rejected"
	NotifyNewMessage           = "new_message"
	NotifyVerificationReviewed = "verification_reviewed"
)

// CreateNotification stores an in-app notification. payload must be a JSON
// object; nil stores {}.
func (r *Repo) CreateNotification(ctx context.Context, userID int64, ntype string, payload models.Payload) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, payload) VALUES (?, ?, ?)`,
		userID, ntype, payload,
	); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListNotifications returns the newest notifications first, 20 when limit <= 0.
func (r *Repo) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	notifs := []models.Notification{}
	err := r.db.SelectContext(ctx, &notifs,
		`SELECT id, user_id, type, payload, read, created_at FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifs, nil
}

func (r *Repo) UnreadNotificationCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID,
	)
	return count, err
}

func (r *Repo) MarkNotificationsRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID,
	)
	return err
}
