// Package config loads termweave configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (TERMWEAVE_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .termweave.yaml in current directory
//  2. ~/.config/termweave/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all termweave configuration.
type Config struct {
	// Shell settings
	Shell string `yaml:"shell"` // Shell binary for new panes; empty uses the user's login shell

	// Terminal geometry used before the first window size arrives
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`

	// Resize debounce
	ResizeDebounce string `yaml:"resize_debounce"` // Go duration string, e.g. "75ms"

	// Persistence
	StateFile string `yaml:"state_file"` // Path of the session state file
	Autosave  string `yaml:"autosave"`   // Autosave interval, "0"/"off" disables

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs, e.g. "Authorization=Basic abc123"

	// Parsed durations (not from YAML, set after loading)
	ResizeDebounceDuration time.Duration `yaml:"-"`
	AutosaveDuration       time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Cols:           80,
		Rows:           24,
		ResizeDebounce: "75ms",
		Autosave:       "30s",
		StateFile:      defaultStateFile(),
	}
}

func defaultStateFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "termweave", "session.json")
	}
	return "termweave-session.json"
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Try to load config file
	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	var err error
	cfg.ResizeDebounceDuration, err = parseDurationOrDisable(cfg.ResizeDebounce, 75*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid resize debounce %q: %w", cfg.ResizeDebounce, err)
	}
	cfg.AutosaveDuration, err = parseDurationOrDisable(cfg.Autosave, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid autosave interval %q: %w", cfg.Autosave, err)
	}

	if cfg.Cols < 1 || cfg.Rows < 1 {
		return nil, fmt.Errorf("invalid terminal size %dx%d", cfg.Cols, cfg.Rows)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".termweave.yaml"); err == nil {
		return ".termweave.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "termweave", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Shell != "" {
		cfg.Shell = file.Shell
	}
	if file.Cols > 0 {
		cfg.Cols = file.Cols
	}
	if file.Rows > 0 {
		cfg.Rows = file.Rows
	}
	if file.ResizeDebounce != "" {
		cfg.ResizeDebounce = file.ResizeDebounce
	}
	if file.StateFile != "" {
		cfg.StateFile = file.StateFile
	}
	if file.Autosave != "" {
		cfg.Autosave = file.Autosave
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("TERMWEAVE_SHELL"); v != "" {
		cfg.Shell = v
	}
	if v := os.Getenv("TERMWEAVE_COLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cols = n
		}
	}
	if v := os.Getenv("TERMWEAVE_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Rows = n
		}
	}
	if v := os.Getenv("TERMWEAVE_RESIZE_DEBOUNCE"); v != "" {
		cfg.ResizeDebounce = v
	}
	if v := os.Getenv("TERMWEAVE_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("TERMWEAVE_AUTOSAVE"); v != "" {
		cfg.Autosave = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// Shell fallback
	if cfg.Shell == "" {
		if v := os.Getenv("SHELL"); v != "" {
			cfg.Shell = v
		}
	}
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
