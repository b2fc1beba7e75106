// Package daemon manages the Koru daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	API       APIConfig       `toml:"api"`
	Session   SessionConfig   `toml:"session"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// StoreConfig controls the durable record store.
type StoreConfig struct {
	Dir string `toml:"dir"`

	// PersistenceDisabled runs the engine statelessly: reads return
	// defaults and writes are discarded. Distinct from store failures,
	// which are real errors.
	PersistenceDisabled bool `toml:"persistence_disabled"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// SessionConfig bounds the read queries the API serves.
type SessionConfig struct {
	HistoryLimit     int `toml:"history_limit"`
	LeaderboardLimit int `toml:"leaderboard_limit"`
	RecentDays       int `toml:"recent_days"`
}

// TelemetryConfig controls the Prometheus /metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := koruHome()
	return Config{
		Store: StoreConfig{
			Dir: homeDir,
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8474,
			CORSOrigins: []string{"*"},
		},
		Session: SessionConfig{
			HistoryLimit:     50,
			LeaderboardLimit: 10,
			RecentDays:       7,
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "koru.log"),
		},
	}
}

// LoadConfig reads config from ~/.koru/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(koruHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.koru/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(koruHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// koruHome returns the Koru data directory.
func koruHome() string {
	if env := os.Getenv("KORU_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".koru")
}

// KoruHome is exported for use by other packages.
func KoruHome() string {
	return koruHome()
}
