// Package config provides configuration management for flins using Viper.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/paths"
)

// ProjectFile is a per-project config file picked up from the working
// directory before the user config.
const ProjectFile = ".flins.yaml"

// Config represents the top-level configuration structure.
type Config struct {
	Version       int                       `mapstructure:"version" yaml:"version"`
	StateDir      string                    `mapstructure:"state_dir" yaml:"state_dir"`
	DefaultAgents []string                  `mapstructure:"default_agents" yaml:"default_agents"`
	InstallMode   string                    `mapstructure:"install_mode" yaml:"install_mode"`
	Agents        map[string]agent.Override `mapstructure:"agents" yaml:"agents"`
}

// Init resets Viper and installs defaults, search paths and environment
// binding. Call this once at startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	dir := os.Getenv("FLINS_CONFIG_DIR")
	if dir == "" {
		dir = paths.ConfigDir()
	}
	viper.AddConfigPath(dir)

	// FLINS_STATE_DIR, FLINS_INSTALL_MODE, FLINS_DEFAULT_AGENTS=a,b ...
	viper.SetEnvPrefix("FLINS")
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("state_dir", "")
	viper.SetDefault("default_agents", []string{})
	viper.SetDefault("install_mode", "copy")
}

// Load reads and validates the configuration.
// An explicit path must exist. With an empty path, ./.flins.yaml is used
// when present, then config.yaml in the config directory, and finally the
// defaults alone.
func Load(path string) (*Config, error) {
	if path == "" {
		if info, err := os.Stat(ProjectFile); err == nil && info.Mode().IsRegular() {
			path = ProjectFile
		}
	}
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file: defaults only.
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	reg, err := agent.Default()
	if err != nil {
		return nil, err
	}
	if errs := Validate(&cfg, reg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

// Registry returns reg with the configured directory overrides applied.
func (c *Config) Registry(reg *agent.Registry) (*agent.Registry, error) {
	if len(c.Agents) == 0 {
		return reg, nil
	}
	return reg.WithOverrides(c.Agents)
}

// ResolvedStateDir returns the state directory, defaulting to the XDG
// state location.
func (c *Config) ResolvedStateDir() string {
	if c.StateDir == "" {
		return paths.StateDir()
	}
	return paths.ExpandHome(c.StateDir, paths.Home())
}
