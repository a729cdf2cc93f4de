// Package jobs runs scheduled maintenance for the server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type SessionCleaner interface {
	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// CleanupSessions deletes expired sessions once.
func CleanupSessions(ctx context.Context, store SessionCleaner, log logrus.FieldLogger) {
	start := time.Now()
	n, err := store.CleanExpiredSessions(ctx)
	if err != nil {
		log.WithError(err).Error("session cleanup failed")
		return
	}
	log.WithFields(logrus.Fields{
		"removed":    n,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("session cleanup completed")
}

// Start schedules session cleanup and starts the scheduler. Callers stop it
// with Stop on shutdown.
func Start(schedule string, store SessionCleaner, log logrus.FieldLogger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		CleanupSessions(ctx, store, log)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session cleanup %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
