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

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/logging"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
)

// Config holds the application configuration.
type Config struct {
	Clinic  ClinicConfig  `toml:"clinic"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// ClinicConfig holds booking rules.
type ClinicConfig struct {
	Workdays        []string `toml:"workdays"`         // e.g., ["monday", "tuesday", ...]
	Open            string   `toml:"open"`             // first bookable start, e.g. "08:00"
	Close           string   `toml:"close"`            // no start at or after, e.g. "21:00"
	DefaultDuration int      `toml:"default_duration"` // minutes
	SlotStep        int      `toml:"slot_step"`        // minutes between free-slot candidates
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Driver      string `toml:"driver"` // "sqlite" or "postgres"
	DBPath      string `toml:"db_path"`
	DatabaseURL string `toml:"database_url"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme        string `toml:"theme"`         // "mocha", "macchiato", "frappe", "latte"
	DefaultScope string `toml:"default_scope"` // "today", "upcoming", "past", "all"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"` // empty disables logging
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Clinic: ClinicConfig{
			Workdays:        []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
			Open:            appointment.DefaultHours.Open,
			Close:           appointment.DefaultHours.Close,
			DefaultDuration: 30,
			SlotStep:        15,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme:        "frappe",
			DefaultScope: string(schedule.ScopeToday),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "clinicdesk.db"
	}
	return filepath.Join(home, ".local", "share", "clinicdesk", "clinicdesk.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "clinicdesk", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.Path = expandPath(cfg.Log.Path)

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
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CLINICDESK_* environment variables.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	// Clinic overrides
	if v := os.Getenv("CLINICDESK_OPEN"); v != "" {
		cfg.Clinic.Open = v
	}
	if v := os.Getenv("CLINICDESK_CLOSE"); v != "" {
		cfg.Clinic.Close = v
	}
	if v := os.Getenv("CLINICDESK_WORKDAYS"); v != "" {
		cfg.Clinic.Workdays = strings.Split(v, ",")
	}
	if v := os.Getenv("CLINICDESK_DEFAULT_DURATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLINICDESK_DEFAULT_DURATION: %w", err)
		}
		cfg.Clinic.DefaultDuration = n
	}
	if v := os.Getenv("CLINICDESK_SLOT_STEP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLINICDESK_SLOT_STEP: %w", err)
		}
		cfg.Clinic.SlotStep = n
	}

	// Storage overrides
	if v := os.Getenv("CLINICDESK_DB_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("CLINICDESK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("CLINICDESK_DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}

	// UI overrides
	if v := os.Getenv("CLINICDESK_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("CLINICDESK_UI_SCOPE"); v != "" {
		cfg.UI.DefaultScope = v
	}

	// Log overrides
	if v := os.Getenv("CLINICDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CLINICDESK_LOG_PATH"); v != "" {
		cfg.Log.Path = v
	}
	return nil
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
	if err := validateTime(c.Clinic.Open, "open"); err != nil {
		return err
	}
	if err := validateTime(c.Clinic.Close, "close"); err != nil {
		return err
	}
	if c.Clinic.Open >= c.Clinic.Close {
		return errors.New("open must be before close")
	}
	if c.Clinic.DefaultDuration <= 0 {
		return errors.New("default_duration must be positive")
	}
	if c.Clinic.SlotStep <= 0 {
		return errors.New("slot_step must be positive")
	}

	if len(c.Clinic.Workdays) == 0 {
		return errors.New("at least one workday must be configured")
	}
	for _, day := range c.Clinic.Workdays {
		if !isValidWeekday(day) {
			return fmt.Errorf("invalid workday: %s", day)
		}
	}

	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("database_url must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("driver must be 'sqlite' or 'postgres', got %q", c.Storage.Driver)
	}

	if _, err := schedule.ParseScope(c.UI.DefaultScope); err != nil {
		return fmt.Errorf("default_scope: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// validateTime checks if a time string is in HH:MM format.
func validateTime(t, field string) error {
	if err := appointment.ValidateTime(t); err != nil {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

var validWeekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

func isValidWeekday(day string) bool {
	return validWeekdays[strings.ToLower(strings.TrimSpace(day))]
}

// Hours returns the clinic booking window.
func (c *Config) Hours() appointment.Hours {
	return appointment.Hours{Open: c.Clinic.Open, Close: c.Clinic.Close}
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if strings.EqualFold(c.Storage.Driver, "postgres") {
		return c.Storage.DatabaseURL
	}
	return c.Storage.DBPath
}

// Scope returns the configured default tab.
func (c *Config) Scope() schedule.Scope {
	scope, err := schedule.ParseScope(c.UI.DefaultScope)
	if err != nil {
		return schedule.ScopeToday
	}
	return scope
}

// IsWorkday returns true if the given weekday name is a configured workday.
func (c *Config) IsWorkday(weekday string) bool {
	weekday = strings.ToLower(weekday)
	for _, d := range c.Clinic.Workdays {
		if strings.ToLower(strings.TrimSpace(d)) == weekday {
			return true
		}
	}
	return false
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
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
