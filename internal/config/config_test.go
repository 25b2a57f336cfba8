package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/sccse-chat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"SCCSE_CONFIG",
	"SCCSE_SERVER_URL",
	"SCCSE_CLIENT_TIMEOUT",
	"SCCSE_SESSION_FILE",
	"SCCSE_SERIALIZE_SENDS",
	"SCCSE_MARKDOWN_STYLE",
	"SCCSE_LOG_FILE",
	"SCCSE_LOG_LEVEL",
}

// isolate clears SCCSE_* variables and points the user config dir at an empty temp dir.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.ServerURL)
	assert.Equal(t, time.Duration(0), cfg.ClientTimeout, "no timeout unless configured")
	assert.False(t, cfg.SerializeSends)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	t.Setenv("SCCSE_CONFIG", writeConfig(t, `
[server]
url = "http://chat.internal:5000"
timeout = "30s"

[session]
file = "/tmp/custom-session.yaml"

[chat]
serialize_sends = true
markdown_style = "notty"

[log]
level = "debug"
`))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://chat.internal:5000", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.ClientTimeout)
	assert.Equal(t, "/tmp/custom-session.yaml", cfg.SessionFile)
	assert.True(t, cfg.SerializeSends)
	assert.Equal(t, "notty", cfg.MarkdownStyle)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, config.Defaults().LogFile, cfg.LogFile, "unset keys keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv("SCCSE_CONFIG", writeConfig(t, `
[server]
url = "http://from-file:5000"
[chat]
serialize_sends = true
`))
	t.Setenv("SCCSE_SERVER_URL", "http://from-env:5000")
	t.Setenv("SCCSE_SERIALIZE_SENDS", "false")
	t.Setenv("SCCSE_CLIENT_TIMEOUT", "2m")
	t.Setenv("SCCSE_LOG_LEVEL", "warning")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:5000", cfg.ServerURL)
	assert.False(t, cfg.SerializeSends)
	assert.Equal(t, 2*time.Minute, cfg.ClientTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad timeout", map[string]string{"SCCSE_CLIENT_TIMEOUT": "soon"}},
		{"bad bool", map[string]string{"SCCSE_SERIALIZE_SENDS": "sometimes"}},
		{"missing explicit file", map[string]string{"SCCSE_CONFIG": "/nonexistent/sccse.toml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	isolate(t)
	t.Setenv("SCCSE_CONFIG", writeConfig(t, `[server`))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadFileBadTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("SCCSE_CONFIG", writeConfig(t, "[server]\ntimeout = \"later\"\n"))

	_, err := config.Load()
	assert.ErrorContains(t, err, "server.timeout")
}

func TestUnknownLogLevelFallsBackToInfo(t *testing.T) {
	isolate(t)
	t.Setenv("SCCSE_LOG_LEVEL", "chatty")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var console, file bytes.Buffer
	logger := config.SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("login succeeded", "user_id", "42")

	assert.Contains(t, console.String(), "login succeeded")
	assert.NotContains(t, console.String(), "hidden")
	assert.True(t, strings.HasPrefix(file.String(), "{"), "file output is JSON")
	assert.Contains(t, file.String(), `"user_id":"42"`)
}

func TestSetupLoggerFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sccse.log")
	logger, cleanup := config.SetupLogger(nil, path, slog.LevelDebug)

	logger.Debug("send cycle started", "cycle_id", "abc")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cycle_id":"abc"`)
}

func TestSetupLoggerUnwritableFile(t *testing.T) {
	var console bytes.Buffer
	logger, cleanup := config.SetupLogger(&console, filepath.Join(t.TempDir(), "missing", "dir", "sccse.log"), slog.LevelInfo)
	defer cleanup()

	logger.Info("still works")
	assert.Contains(t, console.String(), "failed to open log file")
	assert.Contains(t, console.String(), "still works")
}
