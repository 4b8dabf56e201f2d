// Package config handles configuration loading and validation for newsdesk.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/newsdesk/internal/core/session"
	"github.com/colonyops/newsdesk/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Feed    FeedConfig    `yaml:"feed"`
	TUI     TUIConfig     `yaml:"tui"`
	Metrics MetricsConfig `yaml:"metrics"`
	Events  EventsConfig  `yaml:"events"`
}

// APIConfig configures the backend the client talks to.
type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`             // per request
	RequestsPerSecond float64       `yaml:"requests_per_second"` // client-side rate limit
	Burst             int           `yaml:"burst"`
	SessionCookie     string        `yaml:"session_cookie"`      // value of an existing login session
	SessionCookieName string        `yaml:"session_cookie_name"` // cookie name used by the backend
}

// AuthConfig configures session resolution.
type AuthConfig struct {
	ModeratorGroup string `yaml:"moderator_group"`
}

// FeedConfig configures story mapping.
type FeedConfig struct {
	ImageBaseURL string `yaml:"image_base_url"` // base for relative multimedia URLs
}

// TUIConfig configures the interactive reader.
type TUIConfig struct {
	Theme      string        `yaml:"theme"`
	DateFormat string        `yaml:"date_format"` // Go time layout for the masthead date
	ToastTTL   time.Duration `yaml:"toast_ttl"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// EventsConfig configures the in-process event bus.
type EventsConfig struct {
	Buffer int `yaml:"buffer"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
			SessionCookieName: "session",
		},
		Auth: AuthConfig{
			ModeratorGroup: session.DefaultModeratorGroup,
		},
		Feed: FeedConfig{
			ImageBaseURL: "https://www.nytimes.com/",
		},
		TUI: TUIConfig{
			Theme:      styles.DefaultTheme,
			DateFormat: "Monday, January 2, 2006",
			ToastTTL:   5 * time.Second,
		},
		Events: EventsConfig{
			Buffer: 256,
		},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.API.RequestsPerSecond == 0 {
		c.API.RequestsPerSecond = defaults.API.RequestsPerSecond
	}
	if c.API.Burst == 0 {
		c.API.Burst = defaults.API.Burst
	}
	if c.API.SessionCookieName == "" {
		c.API.SessionCookieName = defaults.API.SessionCookieName
	}
	if strings.TrimSpace(c.Auth.ModeratorGroup) == "" {
		c.Auth.ModeratorGroup = defaults.Auth.ModeratorGroup
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.DateFormat == "" {
		c.TUI.DateFormat = defaults.TUI.DateFormat
	}
	if c.TUI.ToastTTL == 0 {
		c.TUI.ToastTTL = defaults.TUI.ToastTTL
	}
	if c.Events.Buffer == 0 {
		c.Events.Buffer = defaults.Events.Buffer
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second cannot be negative")
	}

	if c.API.Burst < 1 {
		return fmt.Errorf("api.burst must be at least 1")
	}

	if c.Events.Buffer < 1 {
		return fmt.Errorf("events.buffer must be at least 1")
	}

	return nil
}
