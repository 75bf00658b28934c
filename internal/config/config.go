// Package config handles configuration loading using viper.
package config

import (
	"firestige.xyz/strix/internal/log"
)

// Config is the top-level agent configuration, mapped from the optional
// YAML config file.
type Config struct {
	Log       log.Config                `mapstructure:"log"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Parsers   map[string]map[string]any `mapstructure:"parsers"`   // plugin name → Init config
	Reporters []ReporterConfig          `mapstructure:"reporters"` // applied in listed order
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ReporterConfig selects one reporter plugin and its options.
type ReporterConfig struct {
	Name    string         `mapstructure:"name"`
	Options map[string]any `mapstructure:"options"`
}
