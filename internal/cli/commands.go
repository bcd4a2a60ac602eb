package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/boxbench/boxbench/internal/bench/cpu"
	"github.com/boxbench/boxbench/internal/bench/disk"
	"github.com/boxbench/boxbench/internal/bench/netspeed"
	"github.com/boxbench/boxbench/internal/config"
	"github.com/boxbench/boxbench/internal/errors"
	"github.com/boxbench/boxbench/internal/logger"
	"github.com/boxbench/boxbench/internal/sysinfo"
)

// Command-specific flags
var (
	cpuDurationFlag string
	cpuThreadsFlag  int
	diskDirFlag     string
	diskYesFlag     bool
	netDurationFlag string
	initForceFlag   bool
	initGlobalFlag  bool
)

// cpuCmd runs the CPU benchmark headless.
var cpuCmd = &cobra.Command{
	Use:   "cpu",
	Short: "Run the CPU benchmark",
	Long: `Run the CPU benchmark and print single-core and multi-core scores.

Six phases exercise integer, floating-point, vector, hashing, compression,
and memory workloads. The composite score is a weighted average.

Examples:
  boxbench cpu
  boxbench cpu --duration 2s
  boxbench cpu --threads 4 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configFlag)
		if err != nil {
			return err
		}
		if cpuDurationFlag != "" {
			d, err := parsePhaseDuration(cpuDurationFlag)
			if err != nil {
				return err
			}
			cfg.CPU.PhaseDuration = d
		}
		if cpuThreadsFlag > 0 {
			cfg.CPU.Threads = cpuThreadsFlag
		}
		log := logger.Default()
		return runBenchmark(buildCoordinators(cfg, log)[cpu.Kind], cfg)
	},
}

// diskCmd runs the disk benchmark headless.
var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Run the disk I/O benchmark",
	Long: `Run the disk I/O benchmark and print IOPS and throughput scores.

A scratch file is written to a temporary directory, then exercised with 4K
random, 64K sequential, and mixed read/write phases. The scratch directory
is removed when the run ends, whatever the outcome.

Examples:
  boxbench disk
  boxbench disk --dir /mnt/data
  boxbench disk --yes --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configFlag)
		if err != nil {
			return err
		}
		if diskDirFlag != "" {
			cfg.Disk.ScratchDir = diskDirFlag
		}
		proceed, err := confirmDiskRun(cfg)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Println("Cancelled.")
			return nil
		}
		log := logger.Default()
		return runBenchmark(buildCoordinators(cfg, log)[disk.Kind], cfg)
	},
}

// netCmd runs the loopback network probe headless.
var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Run the loopback network probe",
	Long: `Run the network probe and print latency and throughput scores.

All phases run against a loopback TCP listener, so the numbers characterize
the local network stack, not an internet path.

Examples:
  boxbench net
  boxbench net --duration 3s --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configFlag)
		if err != nil {
			return err
		}
		if netDurationFlag != "" {
			d, err := parsePhaseDuration(netDurationFlag)
			if err != nil {
				return err
			}
			cfg.Net.PhaseDuration = d
		}
		log := logger.Default()
		return runBenchmark(buildCoordinators(cfg, log)[netspeed.Kind], cfg)
	},
}

// sysinfoCmd prints a system summary.
var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Print a system summary",
	Long: `Print host, CPU, memory, load, and filesystem information.

Examples:
  boxbench sysinfo
  boxbench sysinfo --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		snap, err := sysinfo.Collect(ctx)
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(os.Stdout, snap)
		}
		fmt.Println(snap.Render())
		return nil
	},
}

// initCmd writes a starter config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter config file",
	Long: `Write a commented starter configuration.

By default the file is created as .boxbench.yaml in the current directory.
With --global it goes to ~/.config/boxbench/config.yaml instead.

Examples:
  boxbench init
  boxbench init --global
  boxbench init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(initGlobalFlag, initForceFlag)
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for boxbench.

Examples:
  # Bash
  boxbench completion bash > /etc/bash_completion.d/boxbench

  # Zsh
  boxbench completion zsh > "${fpath[1]}/_boxbench"

  # Fish
  boxbench completion fish > ~/.config/fish/completions/boxbench.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	cpuCmd.Flags().StringVar(&cpuDurationFlag, "duration", "", "per-phase duration (e.g., 500ms, 2s)")
	cpuCmd.Flags().IntVar(&cpuThreadsFlag, "threads", 0, "parallel lane count (default: all cores)")

	diskCmd.Flags().StringVar(&diskDirFlag, "dir", "", "directory for the scratch file (default: system temp)")
	diskCmd.Flags().BoolVarP(&diskYesFlag, "yes", "y", false, "skip the write confirmation prompt")

	netCmd.Flags().StringVar(&netDurationFlag, "duration", "", "per-phase duration (e.g., 1s, 3s)")

	initCmd.Flags().BoolVarP(&initForceFlag, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initGlobalFlag, "global", false, "write to ~/.config/boxbench/ instead of the current directory")

	rootCmd.AddCommand(cpuCmd)
	rootCmd.AddCommand(diskCmd)
	rootCmd.AddCommand(netCmd)
	rootCmd.AddCommand(sysinfoCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}

// parsePhaseDuration parses a duration flag value.
func parsePhaseDuration(flag string) (time.Duration, error) {
	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid duration", flag),
			"Try something like 500ms, 2s, or 1m")
	}
	if d <= 0 {
		return 0, errors.New(errors.ErrConfig,
			"Duration must be positive",
			"Try something like 500ms, 2s, or 1m")
	}
	return d, nil
}

// confirmDiskRun asks before the disk benchmark writes to disk. Skipped with
// --yes and in machine mode, where no prompt can be answered.
func confirmDiskRun(cfg *config.Config) (bool, error) {
	if diskYesFlag || machineMode {
		return true, nil
	}

	dir := cfg.Disk.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}

	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write a %d MB scratch file under %s?",
					cfg.Disk.FileSizeMB, filepath.Join(dir, "boxbench-disk"))).
				Description("The file is removed when the benchmark finishes.").
				Value(&proceed),
		),
	)
	if err := form.Run(); err != nil {
		return false, errors.WrapWithCode(err, errors.ErrDisk,
			"Failed to get confirmation",
			"Use --yes to skip the prompt")
	}
	return proceed, nil
}
