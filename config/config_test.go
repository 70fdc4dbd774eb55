package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-mingle/domain/session"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, session.DefaultLimits(), cfg.Limits())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MINGLE_ADDR", ":8080")
	t.Setenv("MINGLE_MAX_CONCURRENT_SESSIONS", "7")
	t.Setenv("MINGLE_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 7, cfg.Limits().MaxConcurrentSessions)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MINGLE_GUESS_MAX=12\n"), 0o600))
	// godotenv writes the process environment; t.Setenv restores it on cleanup.
	t.Setenv("MINGLE_GUESS_MAX", "")
	require.NoError(t, os.Unsetenv("MINGLE_GUESS_MAX"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.GuessMax)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{name: "not a number", key: "MINGLE_MIN_PLAYERS", val: "two", want: "parse env:"},
		{name: "impossible roster", key: "MINGLE_MAX_PLAYERS_PER_SESSION", val: "1", want: "max players per session"},
		{name: "bad level", key: "MINGLE_LOG_LEVEL", val: "loud", want: "log level"},
		{name: "bad format", key: "MINGLE_LOG_FORMAT", val: "xml", want: "log format"},
		{name: "negative rate", key: "MINGLE_ACTION_RATE", val: "-1", want: "action rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
