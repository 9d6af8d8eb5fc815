// Package config handles application configuration loading using viper and
// declarative recipe files.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/rtde/internal/log"
)

// Config is the top-level application configuration.
type Config struct {
	Controller ControllerConfig `mapstructure:"controller"`
	Recipes    RecipesConfig    `mapstructure:"recipes"`
	Log        *log.Config      `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ControllerConfig identifies the controller endpoint and session knobs.
type ControllerConfig struct {
	Address         string        `mapstructure:"address"`          // host:port
	ProtocolVersion uint16        `mapstructure:"protocol_version"` // requested at negotiation
	Timeout         time.Duration `mapstructure:"timeout"`          // per-operation deadline
	Frequency       float64       `mapstructure:"frequency"`        // output data package rate, Hz
	Lenient         bool          `mapstructure:"lenient"`          // skip unrecognized stream frames
}

// RecipesConfig points at the declarative recipe file and names the groups
// to use per direction.
type RecipesConfig struct {
	File   string `mapstructure:"file"`
	Output string `mapstructure:"output"`
	Input  string `mapstructure:"input"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// Load reads and validates the application configuration file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("controller.protocol_version", 2)
	v.SetDefault("controller.timeout", "1s")
	v.SetDefault("controller.frequency", 125.0)
	v.SetDefault("recipes.output", "state")
	v.SetDefault("recipes.input", "command")
	v.SetDefault("metrics.path", "/metrics")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.Controller.Address == "" {
		return nil, fmt.Errorf("config %s: controller.address is required", path)
	}
	if cfg.Controller.Timeout <= 0 {
		return nil, fmt.Errorf("config %s: controller.timeout must be positive", path)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return nil, fmt.Errorf("config %s: metrics.listen is required when metrics are enabled", path)
	}
	if cfg.Log == nil {
		cfg.Log = log.DefaultConfig()
	}

	return &cfg, nil
}
