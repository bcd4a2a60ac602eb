// Package config loads and validates boxbench configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/boxbench/boxbench/internal/errors"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".boxbench.yaml"
	// GlobalConfigDir is the directory for global config, under $HOME.
	GlobalConfigDir = ".config/boxbench"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Config is the root configuration.
type Config struct {
	Dashboard Dashboard `mapstructure:"dashboard" yaml:"dashboard"`
	CPU       CPU       `mapstructure:"cpu" yaml:"cpu"`
	Disk      Disk      `mapstructure:"disk" yaml:"disk"`
	Net       Net       `mapstructure:"net" yaml:"net"`
}

// Dashboard tunes the TUI polling loop.
type Dashboard struct {
	// TickInterval is how often the dashboard consumes dirty flags and
	// refreshes benchmark snapshots.
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	// AnimationInterval drives spinner/progress animation frames; it may be
	// shorter than TickInterval.
	AnimationInterval time.Duration `mapstructure:"animation_interval" yaml:"animation_interval"`
}

// CPU tunes the CPU benchmark plan.
type CPU struct {
	PhaseDuration time.Duration      `mapstructure:"phase_duration" yaml:"phase_duration"`
	Threads       int                `mapstructure:"threads" yaml:"threads"`
	Weights       map[string]float64 `mapstructure:"weights" yaml:"weights,omitempty"`
}

// Disk tunes the disk benchmark plan.
type Disk struct {
	ScratchDir    string        `mapstructure:"scratch_dir" yaml:"scratch_dir"`
	FileSizeMB    int           `mapstructure:"file_size_mb" yaml:"file_size_mb"`
	PhaseDuration time.Duration `mapstructure:"phase_duration" yaml:"phase_duration"`
	MinFreeMB     int           `mapstructure:"min_free_mb" yaml:"min_free_mb"`
}

// Net tunes the network probe plan.
type Net struct {
	PhaseDuration time.Duration `mapstructure:"phase_duration" yaml:"phase_duration"`
	BlockSizeKB   int           `mapstructure:"block_size_kb" yaml:"block_size_kb"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dashboard: Dashboard{
			TickInterval:      100 * time.Millisecond,
			AnimationInterval: 50 * time.Millisecond,
		},
		CPU: CPU{
			PhaseDuration: 500 * time.Millisecond,
		},
		Disk: Disk{
			FileSizeMB:    64,
			PhaseDuration: time.Second,
			MinFreeMB:     256,
		},
		Net: Net{
			PhaseDuration: time.Second,
			BlockSizeKB:   256,
		},
	}
}

// Load reads config from the specified path, layered over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'boxbench init' to create one, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file: "+path,
			"Check field names and value types against 'boxbench init' output")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .boxbench.yaml in the current directory
// 3. ~/.config/boxbench/config.yaml (global defaults)
//
// Returns an empty string (and no error) when nothing is found; callers fall
// back to Default().
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}

	return "", nil
}

// LoadOrDefault resolves and loads config, returning defaults when no file
// exists anywhere in the search path.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Write marshals the config to YAML at the given path, creating parent
// directories. Used by 'boxbench init'.
func Write(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory",
			"Check directory permissions")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot serialize config", "")
	}
	return os.WriteFile(path, data, 0644)
}
