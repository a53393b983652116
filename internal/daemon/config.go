// Package daemon manages the FocusRPG daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Data    DataConfig    `toml:"data"`
	API     APIConfig     `toml:"api"`
	Oracle  OracleConfig  `toml:"oracle"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

// DataConfig controls where state lives.
type DataConfig struct {
	Dir string `toml:"dir"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// OracleConfig controls the external verification oracle.
type OracleConfig struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// EngineConfig controls engine timing.
type EngineConfig struct {
	TickSeconds int `toml:"tick_seconds"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	home := focusHome()
	return Config{
		Data: DataConfig{
			Dir: home,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7177,
		},
		Oracle: OracleConfig{
			TimeoutSeconds: 10,
		},
		Engine: EngineConfig{
			TickSeconds: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(home, "focusrpg.log"),
		},
	}
}

// LoadConfig reads ~/.focusrpg/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(focusHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.focusrpg/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(focusHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// OracleTimeout returns the configured oracle timeout as a duration.
func (c Config) OracleTimeout() time.Duration {
	if c.Oracle.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Oracle.TimeoutSeconds) * time.Second
}

// TickInterval returns the engine tick interval.
func (c Config) TickInterval() time.Duration {
	if c.Engine.TickSeconds <= 0 {
		return time.Second
	}
	return time.Duration(c.Engine.TickSeconds) * time.Second
}

// focusHome returns the FocusRPG data directory.
func focusHome() string {
	if env := os.Getenv("FOCUSRPG_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".focusrpg")
}

// FocusHome is exported for use by other packages.
func FocusHome() string {
	return focusHome()
}
