package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/config"
	"github.com/boxbench/boxbench/internal/errors"
	"github.com/boxbench/boxbench/internal/ui"
	"github.com/boxbench/boxbench/internal/util"
)

// runBenchmark drives one coordinator to a terminal state from the command
// line. It polls snapshots the same way the dashboard does: the dirty flag
// gates redraws, and the animation frame advances once per tick.
func runBenchmark(c *bench.Coordinator, cfg *config.Config) error {
	interactive := !machineMode && term.IsTerminal(int(os.Stdout.Fd()))

	out := termenv.NewOutput(os.Stdout)
	if interactive {
		out.HideCursor()
		defer out.ShowCursor()
	}

	started := time.Now()
	if !c.Start() {
		return errors.New(errors.ErrState,
			"A "+c.Kind()+" benchmark is already running",
			"Wait for the current run to finish")
	}

	ticker := time.NewTicker(cfg.Dashboard.TickInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.AdvanceAnimation()
		if !c.TakeDirty() {
			continue
		}

		snap := c.Snapshot()
		switch snap.Status {
		case bench.StatusRunning:
			if interactive {
				out.ClearLine()
				fmt.Fprint(out, "\r"+ui.ProgressLine(snap.AnimationFrame, snap.PhaseTitle, snap.Progress, 30))
			}

		case bench.StatusCompleted:
			if interactive {
				out.ClearLine()
				fmt.Fprint(out, "\r")
			}
			return reportCompleted(c.Kind(), snap, time.Since(started))

		case bench.StatusFailed:
			if interactive {
				out.ClearLine()
				fmt.Fprint(out, "\r")
			}
			return errors.New(failureCode(c.Kind()),
				c.Kind()+" benchmark failed: "+snap.Err,
				"Re-run with BOXBENCH_DEBUG=1 for details")
		}
	}
	return nil
}

// reportCompleted prints the final scores, as a table or a JSON envelope.
func reportCompleted(kind string, snap bench.State, elapsed time.Duration) error {
	if machineMode {
		return WriteJSONSuccess(os.Stdout, NewRunReport(kind, snap, elapsed))
	}

	fmt.Printf("%s %s benchmark completed in %s\n\n",
		ui.SuccessStyle.Render(ui.SymbolSuccess), kind, util.ShortDuration(elapsed))
	fmt.Println(ui.RenderResults(snap.Results, ui.LabelsFor(kind)))
	return nil
}

// failureCode picks the error code matching the test kind.
func failureCode(kind string) string {
	switch kind {
	case "disk":
		return errors.ErrDisk
	case "net":
		return errors.ErrNet
	default:
		return errors.ErrBench
	}
}
