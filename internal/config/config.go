// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	User     UserConfig     `toml:"user"`
	Schedule ScheduleConfig `toml:"schedule"`
	LLM      LLMConfig      `toml:"llm"`
	Storage  StorageConfig  `toml:"storage"`
}

// UserConfig identifies whose tasks and slots the CLI operates on.
type UserConfig struct {
	ID string `toml:"id"`
}

// ScheduleConfig holds scheduling settings.
type ScheduleConfig struct {
	WorkStart             string `toml:"work_start"`              // e.g., "09:00"
	WorkEnd               string `toml:"work_end"`                // e.g., "18:00"
	BufferMinutes         int    `toml:"buffer_minutes"`          // gap between scheduled slots
	GridIntervalMinutes   int    `toml:"grid_interval_minutes"`   // snap interval for slot edits
	BreakMinutes          int    `toml:"break_minutes"`
	MaxConsecutiveMinutes int    `toml:"max_consecutive_minutes"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "openai" or "ollama"
	Model    string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		User: UserConfig{
			ID: "default",
		},
		Schedule: ScheduleConfig{
			WorkStart:             "09:00",
			WorkEnd:               "18:00",
			BufferMinutes:         15,
			GridIntervalMinutes:   15,
			BreakMinutes:          60,
			MaxConsecutiveMinutes: 120,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tasktimeflow.db"
	}
	return filepath.Join(home, ".local", "share", "tasktimeflow", "tasktimeflow.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "tasktimeflow", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKTIMEFLOW_USER"); v != "" {
		cfg.User.ID = v
	}

	if v := os.Getenv("TASKTIMEFLOW_WORK_START"); v != "" {
		cfg.Schedule.WorkStart = v
	}
	if v := os.Getenv("TASKTIMEFLOW_WORK_END"); v != "" {
		cfg.Schedule.WorkEnd = v
	}
	if v := os.Getenv("TASKTIMEFLOW_BUFFER_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.BufferMinutes = n
		}
	}
	if v := os.Getenv("TASKTIMEFLOW_GRID_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Schedule.GridIntervalMinutes = n
		}
	}

	if v := os.Getenv("TASKTIMEFLOW_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("TASKTIMEFLOW_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TASKTIMEFLOW_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("TASKTIMEFLOW_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.User.ID == "" {
		return errors.New("user id must be set")
	}
	if err := validateTime(c.Schedule.WorkStart, "work_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.WorkEnd, "work_end"); err != nil {
		return err
	}
	if c.Schedule.WorkStart >= c.Schedule.WorkEnd {
		return errors.New("work_start must be before work_end")
	}
	if c.Schedule.BufferMinutes < 0 {
		return errors.New("buffer_minutes cannot be negative")
	}
	if c.Schedule.GridIntervalMinutes <= 0 {
		return errors.New("grid_interval_minutes must be positive")
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	if !isDigits(t[0:2]) || !isDigits(t[3:5]) {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
