// Package cli wires the boxbench commands: the interactive dashboard
// (default), headless benchmark runs, system info, and config scaffolding.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/bench/cpu"
	"github.com/boxbench/boxbench/internal/bench/disk"
	"github.com/boxbench/boxbench/internal/bench/netspeed"
	"github.com/boxbench/boxbench/internal/config"
	"github.com/boxbench/boxbench/internal/dash"
	"github.com/boxbench/boxbench/internal/logger"
	"github.com/boxbench/boxbench/internal/ui"
)

// Persistent flags
var (
	configFlag string
)

// rootCmd is the base command. Running boxbench with no subcommand starts
// the interactive dashboard.
var rootCmd = &cobra.Command{
	Use:   "boxbench",
	Short: "Benchmark and inspect the box you're on",
	Long: `boxbench is a terminal dashboard for sizing up a server.

Run it bare for the interactive dashboard, or use a subcommand for a
single headless benchmark:

  boxbench             Interactive dashboard (CPU, disk, network, sysinfo)
  boxbench cpu         Run the CPU benchmark and print scores
  boxbench disk        Run the disk I/O benchmark and print scores
  boxbench net         Run the loopback network probe and print scores
  boxbench sysinfo     Print a system summary
  boxbench init        Create a starter config file`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(configFlag)
		if err != nil {
			return err
		}
		log := logger.Default()
		return dash.Run(cfg, buildCoordinators(cfg, log), log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Execute runs the root command and renders any failure. Structured errors
// already format themselves; in machine mode they go out as a JSON envelope
// instead.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if machineMode {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		}
		os.Exit(1)
	}
}

// buildCoordinators assembles one coordinator per test kind from config.
// The dashboard and the headless commands share this wiring, so a benchmark
// behaves identically whichever surface starts it.
func buildCoordinators(cfg *config.Config, log logger.Logger) map[string]*bench.Coordinator {
	spawner := bench.NewGoSpawner(log)
	return map[string]*bench.Coordinator{
		cpu.Kind: bench.New(cpu.NewPlan(cpu.Options{
			PhaseDuration: cfg.CPU.PhaseDuration,
			Threads:       cfg.CPU.Threads,
			Weights:       cfg.CPU.Weights,
		}), bench.WithSpawner(spawner), bench.WithLogger(log)),

		disk.Kind: bench.New(disk.NewPlan(disk.Options{
			Dir:           cfg.Disk.ScratchDir,
			FileSize:      int64(cfg.Disk.FileSizeMB) * 1024 * 1024,
			PhaseDuration: cfg.Disk.PhaseDuration,
			MinFree:       uint64(cfg.Disk.MinFreeMB) * 1024 * 1024,
		}), bench.WithSpawner(spawner), bench.WithLogger(log)),

		netspeed.Kind: bench.New(netspeed.NewPlan(netspeed.Options{
			PhaseDuration: cfg.Net.PhaseDuration,
			BlockSize:     cfg.Net.BlockSizeKB * 1024,
		}), bench.WithSpawner(spawner), bench.WithLogger(log)),
	}
}
