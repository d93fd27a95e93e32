// Package config resolves on-disk locations and loads user settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// Default endpoints of the NYC Open Data school directory and SAT results.
const (
	DefaultSchoolsSource = "https://data.cityofnewyork.us/resource/s3k6-pzi2.json"
	DefaultSATSource     = "https://data.cityofnewyork.us/resource/f9bf-2cp4.json"
)

// Config holds user settings. Zero-valued fields fall back to Default.
type Config struct {
	Database        string        `yaml:"database"`
	Sources         Sources       `yaml:"sources"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	RefreshDebounce time.Duration `yaml:"refresh_debounce"`
	DisplayMode     string        `yaml:"display_mode"`
	LogLevel        string        `yaml:"log_level"`
}

// Sources are the locations of the two datasets. Each may be an http(s) URL
// or a local file path.
type Sources struct {
	Schools string `yaml:"schools"`
	SAT     string `yaml:"sat"`
}

// Default is the configuration used when no file is present.
var Default = Config{
	Sources: Sources{
		Schools: DefaultSchoolsSource,
		SAT:     DefaultSATSource,
	},
	FetchTimeout:    30 * time.Second,
	RefreshDebounce: 150 * time.Millisecond,
	DisplayMode:     "compact",
	LogLevel:        "info",
}

// Load reads settings from path. A missing file is not an error and yields
// Default. An empty path resolves to ConfigPath().
func Load(path string) (Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return NewFromReader(f)
}

// NewFromReader decodes YAML settings layered over Default and validates them.
func NewFromReader(r io.Reader) (Config, error) {
	c := Default
	b, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Sources.Schools == "" {
		return fmt.Errorf("sources.schools is required")
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative")
	}
	if c.RefreshDebounce < 0 {
		return fmt.Errorf("refresh_debounce must not be negative")
	}
	switch strings.ToLower(c.DisplayMode) {
	case "", "compact", "detailed":
	default:
		return fmt.Errorf("display_mode %q: want compact or detailed", c.DisplayMode)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// DatabasePath returns the configured database path, falling back to DBPath().
// A leading "~" is expanded to the home directory.
func (c Config) DatabasePath() (string, error) {
	if c.Database != "" {
		p, err := homedir.Expand(c.Database)
		if err != nil {
			return "", fmt.Errorf("expand database path: %w", err)
		}
		return p, nil
	}
	return DBPath()
}
