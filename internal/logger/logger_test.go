package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput("debug", "json", &buf)

	log.WithField("project_id", 7).Info("project created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "project created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 7, entry["project_id"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	log := newWithOutput("loud", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}
