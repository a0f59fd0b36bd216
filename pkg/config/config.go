package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

type Config struct {
	// Storage
	Store          string `yaml:"store"`
	RedisURL       string `yaml:"redis_url"`
	SaveDebounceMS int    `yaml:"save_debounce_ms"`

	// Page
	DefaultPage string `yaml:"default_page"`

	// Placement
	OriginX     int `yaml:"origin_x"`
	OriginY     int `yaml:"origin_y"`
	CascadeStep int `yaml:"cascade_step"`

	// Editor steps
	NudgeStep      int     `yaml:"nudge_step"`
	ShiftNudgeStep int     `yaml:"shift_nudge_step"`
	ScaleStep      float64 `yaml:"scale_step"`
	RotateStep     int     `yaml:"rotate_step"`

	// Images
	MaxImageSizeMB int `yaml:"max_image_size_mb"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// UI Settings
	ColorTheme  string `yaml:"color_theme"`
	ReportTitle string `yaml:"report_title"`

	Aliases map[string]string `yaml:"aliases"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Store:          StoreFile,
		RedisURL:       "redis://localhost:6379/0",
		SaveDebounceMS: 0,
		DefaultPage:    "",
		OriginX:        100,
		OriginY:        100,
		CascadeStep:    20,
		NudgeStep:      1,
		ShiftNudgeStep: 10,
		ScaleStep:      0.1,
		RotateStep:     90,
		MaxImageSizeMB: 10,
		LogLevel:       "warn",
		LogFormat:      "text",
		ColorTheme:     "auto",
		ReportTitle:    "Pixel Overlay Report",
		Aliases:        make(map[string]string),
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults heals zero or invalid values left by a partial file
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Aliases == nil {
		c.Aliases = make(map[string]string)
	}
	if !isValidStore(c.Store) {
		c.Store = def.Store
	}
	if c.RedisURL == "" {
		c.RedisURL = def.RedisURL
	}
	if c.SaveDebounceMS < 0 {
		c.SaveDebounceMS = 0
	}
	if c.CascadeStep <= 0 {
		c.CascadeStep = def.CascadeStep
	}
	if c.NudgeStep <= 0 {
		c.NudgeStep = def.NudgeStep
	}
	if c.ShiftNudgeStep <= 0 {
		c.ShiftNudgeStep = def.ShiftNudgeStep
	}
	if c.ScaleStep <= 0 {
		c.ScaleStep = def.ScaleStep
	}
	if c.RotateStep == 0 {
		c.RotateStep = def.RotateStep
	}
	if c.MaxImageSizeMB <= 0 {
		c.MaxImageSizeMB = def.MaxImageSizeMB
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.ColorTheme == "" {
		c.ColorTheme = def.ColorTheme
	}
	if c.ReportTitle == "" {
		c.ReportTitle = def.ReportTitle
	}
}

// SaveDebounce returns the snapshot debounce window
func (c *Config) SaveDebounce() time.Duration {
	return time.Duration(c.SaveDebounceMS) * time.Millisecond
}

// MaxImageBytes returns the upload size limit in bytes
func (c *Config) MaxImageBytes() int64 {
	return int64(c.MaxImageSizeMB) << 20
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isValidStore(store string) bool {
	return store == StoreFile || store == StoreRedis
}
