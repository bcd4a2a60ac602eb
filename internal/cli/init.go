package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/boxbench/boxbench/internal/config"
	"github.com/boxbench/boxbench/internal/errors"
	"github.com/boxbench/boxbench/internal/ui"
)

// configTemplate is the starter config written by 'boxbench init'. It is
// hand-written rather than marshaled so durations stay human-readable and
// every field carries a comment.
const configTemplate = `# boxbench configuration
# Search order: --config flag, ./.boxbench.yaml, ~/.config/boxbench/config.yaml

dashboard:
  # How often the dashboard refreshes benchmark state.
  tick_interval: 100ms
  # How often spinners animate. May be shorter than tick_interval.
  animation_interval: 50ms

cpu:
  # Wall-clock budget per phase lane. Each phase runs a single-core pass
  # and an all-cores pass, so a full run takes roughly 12x this.
  phase_duration: 500ms
  # Parallel lane count. 0 means all cores.
  threads: 0
  # Per-phase weight overrides for the composite score, e.g.:
  # weights:
  #   cpu_int: 0.5

disk:
  # Where the scratch file is created. Empty means the system temp dir.
  scratch_dir: ""
  # Scratch file size in MB.
  file_size_mb: 64
  # Wall-clock budget per I/O phase.
  phase_duration: 1s
  # Minimum free space required before the run starts, in MB.
  min_free_mb: 256

net:
  # Wall-clock budget per probe phase.
  phase_duration: 1s
  # Transfer unit of the throughput phases, in KB.
  block_size_kb: 256
`

// initConfig writes the starter config, locally or globally.
func initConfig(global, force bool) error {
	var path string
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot determine home directory",
				"Set $HOME, or run without --global")
		}
		path = filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile)
	} else {
		path = config.ConfigFileName
	}

	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", path),
			"Use --force to overwrite")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory",
			"Check directory permissions")
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}

	fmt.Printf("%s Created %s\n\n", ui.SuccessStyle.Render(ui.SymbolSuccess), path)
	fmt.Println("Next steps:")
	fmt.Println("  boxbench          - interactive dashboard")
	fmt.Println("  boxbench cpu      - headless CPU benchmark")
	fmt.Println("  boxbench sysinfo  - system summary")

	return nil
}
