// Package config loads the designer's settings from a TOML file, with
// environment overrides that may come from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables that override the file.
const (
	EnvConfig  = "BRANCH_CONFIG"
	EnvLogFile = "BRANCH_LOG_FILE"
	EnvIDs     = "BRANCH_IDS"
)

// Config holds branch configuration.
type Config struct {
	Nodes  NodesConfig  `toml:"nodes"`
	View   ViewConfig   `toml:"view"`
	Export ExportConfig `toml:"export"`
	Watch  WatchConfig  `toml:"watch"`
	Log    LogConfig    `toml:"log"`
}

// NodesConfig controls new nodes.
type NodesConfig struct {
	IDs    string `toml:"ids" validate:"oneof=random uuid"`
	Width  int    `toml:"width" validate:"gt=0"`
	Height int    `toml:"height" validate:"gt=0"`
}

// ViewConfig controls the terminal editor. Cell sizes say how many canvas
// pixels one character cell stands for.
type ViewConfig struct {
	CellWidth         int  `toml:"cell_width" validate:"gt=0"`
	CellHeight        int  `toml:"cell_height" validate:"gt=0"`
	ASCII             bool `toml:"ascii"`
	NotificationWidth int  `toml:"notification_width" validate:"gte=12"` // in cells
}

// ExportConfig controls file output.
type ExportConfig struct {
	FontSize float64 `toml:"font_size" validate:"gt=0"`
}

// WatchConfig controls reload notices for the open file.
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms" validate:"gte=0"`
}

// LogConfig controls the log file. An empty file disables logging.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Nodes:  NodesConfig{IDs: "random", Width: 120, Height: 160},
		View:   ViewConfig{CellWidth: 8, CellHeight: 16, NotificationWidth: 28},
		Export: ExportConfig{FontSize: 12},
		Watch:  WatchConfig{Enabled: true, DebounceMS: 200},
		Log:    LogConfig{Level: "info"},
	}
}

// Dir returns the branch config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "branch")
}

// DefaultPath returns the config file used when none is named.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads envFile, if it exists, into the environment, picks the
// config file (path, then BRANCH_CONFIG, then the default location),
// loads it and applies the BRANCH_LOG_FILE and BRANCH_IDS overrides.
func Resolve(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = DefaultPath()
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.Log.File = v
	}
	if v := os.Getenv(EnvIDs); v != "" {
		cfg.Nodes.IDs = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every setting.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
