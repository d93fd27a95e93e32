package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that relocate the data directory and database.
const (
	EnvHome   = "NYCSCHOOLS_HOME"
	EnvDB     = "NYCSCHOOLS_DB"
	EnvConfig = "NYCSCHOOLS_CONFIG"
)

// DataDir returns the directory used to store the school cache, config and logs.
func DataDir() (string, error) {
	if d := os.Getenv(EnvHome); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nycschools"), nil
}

// EnsureDataDir returns DataDir after creating it when missing.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return d, nil
}

// DBPath returns the full path to the SQLite database file.
func DBPath() (string, error) {
	if p := os.Getenv(EnvDB); p != "" {
		return p, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "nycschools.db"), nil
}

// ConfigPath returns the location of the YAML settings file.
func ConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.yaml"), nil
}

// LogPath returns the file the TUI writes its log to.
func LogPath() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "nycschools.log"), nil
}
