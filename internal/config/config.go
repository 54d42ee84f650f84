// Package config loads bot settings from defaults, an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for the bot
type Config struct {
	Token       string `yaml:"token"`
	ContentDir  string `yaml:"content_dir"`
	BrandingDir string `yaml:"branding_dir"`
	Debug       bool   `yaml:"debug"`

	Database DatabaseConfig `yaml:"database"`
	Sessions SessionConfig  `yaml:"sessions"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// DatabaseConfig selects the result history store
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SessionConfig tunes session lifetime
type SessionConfig struct {
	// Sessions untouched for longer than IdleTTL are dropped
	IdleTTL       Duration `yaml:"idle_ttl"`
	EvictInterval Duration `yaml:"evict_interval"`
}

// TelegramConfig tunes the Bot API client
type TelegramConfig struct {
	// RenderTimeout bounds the handling of one update
	RenderTimeout Duration `yaml:"render_timeout"`
	// PollTimeout is the long polling timeout
	PollTimeout Duration `yaml:"poll_timeout"`
	// RequestTimeout bounds every Bot API HTTP request. It must exceed
	// PollTimeout or long polls are cut off.
	RequestTimeout Duration `yaml:"request_timeout"`
}

// Duration is a time.Duration written as a Go duration string in YAML
type Duration time.Duration

// UnmarshalYAML accepts "15s" style strings
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration string
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *Config {
	return &Config{
		ContentDir:  "data/tests",
		BrandingDir: "data/branding",
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "data/quizbot.db",
		},
		Sessions: SessionConfig{
			IdleTTL:       Duration(24 * time.Hour),
			EvictInterval: Duration(10 * time.Minute),
		},
		Telegram: TelegramConfig{
			RenderTimeout:  Duration(15 * time.Second),
			PollTimeout:    Duration(60 * time.Second),
			RequestTimeout: Duration(75 * time.Second),
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded first when present; path may be empty.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Token = v
	} else if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("QUIZ_CONTENT_DIR"); v != "" {
		c.ContentDir = v
	}
	if v := os.Getenv("QUIZ_BRANDING_DIR"); v != "" {
		c.BrandingDir = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Database.DSN = v
	}

	durations := []struct {
		env string
		dst *Duration
	}{
		{"SESSION_IDLE_TTL", &c.Sessions.IdleTTL},
		{"RENDER_TIMEOUT", &c.Telegram.RenderTimeout},
		{"REQUEST_TIMEOUT", &c.Telegram.RequestTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.env, err)
		}
		*d.dst = Duration(parsed)
	}

	if v := os.Getenv("QUIZ_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid QUIZ_DEBUG: %w", err)
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks the settings needed to run the bot
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("BOT_TOKEN environment variable is not set")
	}
	if c.ContentDir == "" {
		return errors.New("content directory is not set")
	}
	if c.Sessions.IdleTTL <= 0 || c.Sessions.EvictInterval <= 0 {
		return errors.New("session durations must be positive")
	}
	if c.Telegram.RequestTimeout <= c.Telegram.PollTimeout {
		return fmt.Errorf("request timeout %s must exceed poll timeout %s",
			c.Telegram.RequestTimeout.Std(), c.Telegram.PollTimeout.Std())
	}
	return nil
}
