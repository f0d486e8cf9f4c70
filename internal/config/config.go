// Package config provides TOML configuration loading for the capture
// CLI. Flags override file values; file values override defaults.
package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration structure.
type Config struct {
	// Connection selects the transport family: "ethernet" or "usb".
	Connection string `toml:"connection"`
	// Host is the scope's LAN address for ethernet connections.
	Host string `toml:"host"`
	// Port hints the raw-socket port; 0 picks the default SCPI port.
	Port int `toml:"port"`
	// Resource is an explicit VISA resource for usb connections; empty
	// auto-detects the first attached instrument.
	Resource string `toml:"resource"`
	// Output is the path template; a timestamp is inserted before the
	// extension on save.
	Output string `toml:"output"`
	// TimeoutSeconds bounds every socket open and read.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// Color is the screenshot background: "WHITE" or "BLACK".
	Color string `toml:"color"`
	// MinBytes is the minimum plausible image size; smaller transfers
	// trigger a retry on the next candidate.
	MinBytes int `toml:"min_bytes"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Connection:     "ethernet",
		Output:         "scope_screenshot.png",
		TimeoutSeconds: 15,
		Color:          "WHITE",
		LogLevel:       "info",
	}
}

// Load reads and parses a TOML config file, applying defaults for
// unset values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Connection == "" {
		cfg.Connection = def.Connection
	}
	if cfg.Output == "" {
		cfg.Output = def.Output
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	if cfg.Color == "" {
		cfg.Color = def.Color
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}
