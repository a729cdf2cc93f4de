package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hirectl", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.Server)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "picks.json"), cfg.PicksFile)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := Config{Server: "https://hire.example.com", Token: "abc", PicksFile: "/tmp/picks.json"}

	require.NoError(t, Save(path, in))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv(EnvPath, "/etc/hirectl.yaml")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/hirectl.yaml", p)
}
