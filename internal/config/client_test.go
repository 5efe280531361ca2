package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearClientEnv(t *testing.T) {
	for _, key := range []string{"HUDDLE_SERVER_URL", "HUDDLE_DATA_DIR", "HUDDLE_LOG_LEVEL", "HUDDLE_LOG_FORMAT", "HUDDLE_BUCKET", "HUDDLE_HISTORY_LIMIT"} {
		unsetEnv(t, key)
	}
}

func TestLoadClientConfig_DefaultFileMissing(t *testing.T) {
	clearClientEnv(t)
	home := t.TempDir()
	t.Setenv("HUDDLE_HOME", home)

	cfg, err := LoadClientConfig("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, filepath.Join(home, "data", "huddle"), cfg.DataDir)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "avatars", cfg.Bucket)
	assert.Equal(t, filepath.Join(cfg.DataDir, "session.json"), cfg.SessionPath())
}

func TestLoadClientConfig_ExplicitFileMissing(t *testing.T) {
	clearClientEnv(t)
	_, err := LoadClientConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadClientConfig_FileThenEnv(t *testing.T) {
	clearClientEnv(t)
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_url: https://chat.example.com/
data_dir: /tmp/huddle-test
history_limit: 20
log_level: debug
`), 0o600))
	t.Setenv("HUDDLE_LOG_LEVEL", "error")
	t.Setenv("HUDDLE_HISTORY_LIMIT", "0")

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", cfg.ServerURL)
	assert.Equal(t, "/tmp/huddle-test", cfg.DataDir)
	assert.Equal(t, "error", cfg.LogLevel)
	// Non-positive limits fall back to the default.
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadClientConfig_BadYAML(t *testing.T) {
	clearClientEnv(t)
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: [oops"), 0o600))

	_, err := LoadClientConfig(path)
	assert.Error(t, err)
}
