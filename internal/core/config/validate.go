package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/newsdesk/internal/core/styles"
)

// ValidateDeep performs comprehensive validation of the configuration
// including URL syntax, listen addresses and config file accessibility. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check). This calls Validate() first for basic
// structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		c.validateURLs(),
		c.validateAuth(),
		c.validateMetrics(),
		c.validateTUI(),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateURLs() error {
	var errs criterio.FieldErrorsBuilder

	if err := httpURL(c.API.BaseURL); err != nil {
		errs = errs.Append("api.base_url", err)
	}

	if c.Feed.ImageBaseURL != "" {
		if err := httpURL(c.Feed.ImageBaseURL); err != nil {
			errs = errs.Append("feed.image_base_url", err)
		}
	}

	return errs.ToError()
}

func (c *Config) validateAuth() error {
	var errs criterio.FieldErrorsBuilder

	if strings.ContainsAny(c.Auth.ModeratorGroup, " \t\n") {
		errs = errs.Append("auth.moderator_group", fmt.Errorf("must not contain whitespace: %q", c.Auth.ModeratorGroup))
	}

	if c.API.SessionCookie != "" && strings.ContainsAny(c.API.SessionCookieName, " ;=") {
		errs = errs.Append("api.session_cookie_name", fmt.Errorf("invalid cookie name %q", c.API.SessionCookieName))
	}

	return errs.ToError()
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Addr == "" {
		return nil
	}

	if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
		return criterio.NewFieldErrors("metrics.addr", fmt.Errorf("invalid listen address: %w", err))
	}
	return nil
}

// httpURL validates that raw is an absolute http or https URL.
func httpURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}

func (c *Config) validateTUI() error {
	var errs criterio.FieldErrorsBuilder

	if !slices.Contains(styles.ThemeNames(), c.TUI.Theme) {
		errs = errs.Append("tui.theme", fmt.Errorf("unknown theme %q (available: %s)", c.TUI.Theme, strings.Join(styles.ThemeNames(), ", ")))
	}

	if c.TUI.ToastTTL < 0 {
		errs = errs.Append("tui.toast_ttl", errors.New("cannot be negative"))
	}

	return errs.ToError()
}
