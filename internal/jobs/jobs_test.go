package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	removed int64
	err     error
	calls   int
}

func (f *fakeCleaner) CleanExpiredSessions(context.Context) (int64, error) {
	f.calls++
	return f.removed, f.err
}

func TestCleanupSessions_LogsCount(t *testing.T) {
	log, hook := test.NewNullLogger()
	store := &fakeCleaner{removed: 3}

	CleanupSessions(context.Background(), store, log)

	assert.Equal(t, 1, store.calls)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, int64(3), hook.LastEntry().Data["removed"])
}

func TestCleanupSessions_LogsError(t *testing.T) {
	log, hook := test.NewNullLogger()
	CleanupSessions(context.Background(), &fakeCleaner{err: errors.New("db locked")}, log)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestStart(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, err := Start("every tuesday-ish", &fakeCleaner{}, log)
	assert.Error(t, err)

	c, err := Start("@hourly", &fakeCleaner{}, log)
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)
}
