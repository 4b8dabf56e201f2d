package commands

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/colonyops/newsdesk/internal/core/config"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Overrides applied on top of the config file.
	APIURL      string
	MetricsAddr string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "newsdesk", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/newsdesk/newsdesk.log
// On Linux: $XDG_STATE_HOME/newsdesk/newsdesk.log (defaults to ~/.local/state/newsdesk/newsdesk.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "newsdesk", "newsdesk.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "newsdesk", "newsdesk.log")
	}

	return filepath.Join(home, ".local", "state", "newsdesk", "newsdesk.log")
}

// ApplyOverrides copies command line overrides into cfg.
func (f *Flags) ApplyOverrides(cfg *config.Config) {
	if f.APIURL != "" {
		cfg.API.BaseURL = strings.TrimRight(f.APIURL, "/")
	}
	if f.MetricsAddr != "" {
		cfg.Metrics.Addr = f.MetricsAddr
	}
}
