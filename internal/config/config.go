// Package config loads client settings from an optional .env file, an
// optional TOML file and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// Server
	ServerURL     string
	ClientTimeout time.Duration

	// Session
	SessionFile string

	// Chat
	SerializeSends bool
	MarkdownStyle  string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig mirrors the TOML file layout. Pointers distinguish unset keys.
type fileConfig struct {
	Server struct {
		URL     *string `toml:"url"`
		Timeout *string `toml:"timeout"`
	} `toml:"server"`
	Session struct {
		File *string `toml:"file"`
	} `toml:"session"`
	Chat struct {
		SerializeSends *bool   `toml:"serialize_sends"`
		MarkdownStyle  *string `toml:"markdown_style"`
	} `toml:"chat"`
	Log struct {
		File  *string `toml:"file"`
		Level *string `toml:"level"`
	} `toml:"log"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		ServerURL:      "http://127.0.0.1:5000",
		ClientTimeout:  0,
		SessionFile:    "",
		SerializeSends: false,
		MarkdownStyle:  "auto",
		LogFile:        filepath.Join(os.TempDir(), "sccse.log"),
		LogLevel:       slog.LevelInfo,
	}
}

// DefaultConfigPath is ~/.config/sccse/config.toml (or the OS equivalent).
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sccse", "config.toml")
}

// Load reads configuration. A .env file in the working directory is loaded
// into the environment first (existing variables win). The TOML file is
// SCCSE_CONFIG, or DefaultConfigPath when that exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()

	path := os.Getenv("SCCSE_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	if fc.Server.URL != nil {
		cfg.ServerURL = *fc.Server.URL
	}
	if fc.Server.Timeout != nil {
		d, err := time.ParseDuration(*fc.Server.Timeout)
		if err != nil {
			return fmt.Errorf("config %s: server.timeout: %w", path, err)
		}
		cfg.ClientTimeout = d
	}
	if fc.Session.File != nil {
		cfg.SessionFile = *fc.Session.File
	}
	if fc.Chat.SerializeSends != nil {
		cfg.SerializeSends = *fc.Chat.SerializeSends
	}
	if fc.Chat.MarkdownStyle != nil {
		cfg.MarkdownStyle = *fc.Chat.MarkdownStyle
	}
	if fc.Log.File != nil {
		cfg.LogFile = *fc.Log.File
	}
	if fc.Log.Level != nil {
		cfg.LogLevel = parseLogLevel(*fc.Log.Level)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.ServerURL = getEnv("SCCSE_SERVER_URL", cfg.ServerURL)
	cfg.SessionFile = getEnv("SCCSE_SESSION_FILE", cfg.SessionFile)
	cfg.MarkdownStyle = getEnv("SCCSE_MARKDOWN_STYLE", cfg.MarkdownStyle)
	cfg.LogFile = getEnv("SCCSE_LOG_FILE", cfg.LogFile)

	if v := os.Getenv("SCCSE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv("SCCSE_CLIENT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCCSE_CLIENT_TIMEOUT: %w", err)
		}
		cfg.ClientTimeout = d
	}
	if v := os.Getenv("SCCSE_SERIALIZE_SENDS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SCCSE_SERIALIZE_SENDS: %w", err)
		}
		cfg.SerializeSends = b
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
