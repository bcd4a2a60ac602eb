package config

import (
	"fmt"

	"github.com/boxbench/boxbench/internal/errors"
)

// Validate checks semantic constraints that YAML parsing can't express.
func (c *Config) Validate() error {
	if c.Dashboard.TickInterval <= 0 {
		return errors.New(errors.ErrConfig,
			"dashboard.tick_interval must be positive",
			"Use a duration like 100ms")
	}
	if c.Dashboard.AnimationInterval <= 0 {
		return errors.New(errors.ErrConfig,
			"dashboard.animation_interval must be positive",
			"Use a duration like 50ms")
	}
	if c.CPU.PhaseDuration <= 0 {
		return errors.New(errors.ErrConfig,
			"cpu.phase_duration must be positive",
			"Use a duration like 500ms")
	}
	if c.CPU.Threads < 0 {
		return errors.New(errors.ErrConfig,
			"cpu.threads cannot be negative",
			"Use 0 to auto-detect the core count")
	}
	for name, w := range c.CPU.Weights {
		if w < 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("cpu.weights[%s] cannot be negative", name),
				"Weights are relative shares of the composite score")
		}
	}
	if c.Disk.FileSizeMB <= 0 {
		return errors.New(errors.ErrConfig,
			"disk.file_size_mb must be positive",
			"64 is a reasonable default")
	}
	if c.Disk.PhaseDuration <= 0 {
		return errors.New(errors.ErrConfig,
			"disk.phase_duration must be positive",
			"Use a duration like 1s")
	}
	if c.Disk.MinFreeMB < 0 {
		return errors.New(errors.ErrConfig,
			"disk.min_free_mb cannot be negative",
			"Use 0 to require only twice the test file size")
	}
	if c.Net.PhaseDuration <= 0 {
		return errors.New(errors.ErrConfig,
			"net.phase_duration must be positive",
			"Use a duration like 1s")
	}
	if c.Net.BlockSizeKB <= 0 {
		return errors.New(errors.ErrConfig,
			"net.block_size_kb must be positive",
			"256 is a reasonable default")
	}
	return nil
}
