// Package config provides the YAML-backed application configuration with
// defaults, struct validation and atomic persistence. Page geometry values
// (paper size, orientation, week start) are closed sets: unknown values
// are rejected at load time instead of silently falling back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SourceConfig describes a single ICS appointment source. Each source also
// acts as a category: its ID keys the category, its name labels the legend
// and its color fills the entry cells.
type SourceConfig struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	URL  string `yaml:"url" json:"url" validate:"required,url"`
	Name string `yaml:"name" json:"name"`
	// Color is the category background in "#RRGGBB" form; empty selects
	// white.
	Color string `yaml:"color" json:"color" validate:"omitempty,hexcolor"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info error"`

	// WeekStart selects the first weekday of calendar rows.
	WeekStart string `yaml:"week_start" json:"week_start" validate:"oneof=monday sunday"`

	// RefreshCron is the cron schedule for serve-mode regeneration
	// (e.g. "*/30 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// PaperSize and Orientation define the page geometry.
	PaperSize   string `yaml:"paper_size" json:"paper_size" validate:"oneof=A3 A4 A5 Letter Legal"`
	Orientation string `yaml:"orientation" json:"orientation" validate:"oneof=portrait landscape"`

	// MarginMM is the page margin in millimetres.
	MarginMM float64 `yaml:"margin_mm" json:"margin_mm" validate:"gte=0,lte=50"`

	// Months is how many consecutive months one document covers.
	Months int `yaml:"months" json:"months" validate:"gte=1,lte=24"`

	// Legend toggles the category legend below the grid.
	Legend bool `yaml:"legend" json:"legend"`

	// ShowEndTimes displays appointment end times in day cells.
	ShowEndTimes bool `yaml:"show_end_times" json:"show_end_times"`

	// Author is embedded into the document metadata.
	Author string `yaml:"author" json:"author"`

	// OutputDir receives generated documents in one-shot mode.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// CacheDir stores the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Sources is the list of subscribed ICS appointment sources.
	Sources []SourceConfig `yaml:"sources" json:"sources" validate:"dive"`

	// BasicAuth, if non-nil, protects all endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Europe/Berlin",
		LogLevel:    "info",
		WeekStart:   "monday",
		RefreshCron: "*/30 * * * *",
		PaperSize:   "A4",
		Orientation: "portrait",
		MarginMM:    10,
		Months:      1,
		Legend:      true,
		Author:      "calprint",
		OutputDir:   "./out",
		CacheDir:    "./var/ics-cache",
		Sources:     []SourceConfig{},
	}
}

// Normalize fills missing values with defaults so partially filled configs
// from older versions keep working. It never repairs invalid enum values;
// those fail in Validate.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.WeekStart == "" {
		c.WeekStart = def.WeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.PaperSize == "" {
		c.PaperSize = def.PaperSize
	}
	if c.Orientation == "" {
		c.Orientation = def.Orientation
	}
	if c.MarginMM <= 0 {
		c.MarginMM = def.MarginMM
	}
	if c.Months <= 0 {
		c.Months = def.Months
	}
	if c.Author == "" {
		c.Author = def.Author
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
}

var validate = validator.New()

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load loads configuration from the given YAML path. A missing file is a
// first run: the default config is written with 0600 permissions and
// returned. An existing file is read, normalized, then validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration atomically: temp file in the target
// directory, fsync, chmod 0600, rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calprint-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save persists the receiver; convenience for the config API handlers.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
