// Package cpu assembles the CPU benchmark plan: six synthetic phases
// measuring integer, floating-point, vector, hashing, compression, and
// memory throughput, each scored for a single core (primary) and all cores
// (secondary).
package cpu

import (
	"fmt"
	"runtime"
	"time"

	"github.com/boxbench/boxbench/internal/bench"
)

// Kind is the test-kind name for the CPU plan.
const Kind = "cpu"

// Phase names, also the keys of the weight table.
const (
	PhaseInt      = "cpu_int"
	PhaseFloat    = "cpu_float"
	PhaseVector   = "cpu_vector"
	PhaseCrypto   = "cpu_crypto"
	PhaseCompress = "cpu_compress"
	PhaseMemory   = "cpu_memory"
)

// Options tune the CPU plan. The zero value picks sensible defaults.
type Options struct {
	// PhaseDuration is the wall-clock budget of each timed lane.
	// Each phase spends roughly 2x this (single pass + parallel pass).
	PhaseDuration time.Duration
	// Threads is the lane count of the parallel pass (default: NumCPU).
	Threads int
	// Weights overrides individual entries of the default weight table.
	Weights map[string]float64
}

func (o Options) withDefaults() Options {
	if o.PhaseDuration <= 0 {
		o.PhaseDuration = 500 * time.Millisecond
	}
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	return o
}

// Weights returns the default per-phase weight table. A fresh map is
// returned so callers can overlay overrides without aliasing.
func Weights() map[string]float64 {
	return map[string]float64{
		PhaseInt:      0.25,
		PhaseFloat:    0.25,
		PhaseVector:   0.15,
		PhaseCrypto:   0.15,
		PhaseCompress: 0.10,
		PhaseMemory:   0.10,
	}
}

// NewPlan builds the CPU benchmark plan.
func NewPlan(opts Options) bench.Plan {
	o := opts.withDefaults()

	weights := Weights()
	for name, w := range o.Weights {
		weights[name] = w
	}

	return bench.Plan{
		Kind: Kind,
		Phases: []bench.Phase{
			timedPhase(PhaseInt, "Integer arithmetic", o, intChunk),
			timedPhase(PhaseFloat, "Floating point", o, floatChunk),
			timedPhase(PhaseVector, "Vector math", o, vectorChunk),
			timedPhase(PhaseCrypto, "Hashing (SHA-256 + BLAKE2b)", o, cryptoChunk),
			timedPhase(PhaseCompress, "Compression (DEFLATE)", o, compressChunk),
			timedPhase(PhaseMemory, "Memory bandwidth", o, memChunk),
		},
		Weights: weights,
	}
}

// timedPhase wraps a chunk into a Phase that runs one single-core lane and
// one all-cores pass, scoring both in chunks per second.
func timedPhase(name, title string, o Options, work chunk) bench.Phase {
	return bench.Phase{
		Name:  name,
		Title: title,
		Run: func() (bench.Result, error) {
			start := time.Now()

			singleIters := runLane(o.PhaseDuration, work)
			multiIters := runParallel(o.PhaseDuration, o.Threads, work)

			secs := o.PhaseDuration.Seconds()
			res := bench.Result{
				Name:      name,
				Primary:   uint64(float64(singleIters) / secs),
				Secondary: uint64(float64(multiIters) / secs),
				Duration:  time.Since(start),
				Details: map[string]string{
					"threads":    fmt.Sprintf("%d", o.Threads),
					"single_ops": fmt.Sprintf("%d", singleIters),
					"multi_ops":  fmt.Sprintf("%d", multiIters),
				},
			}
			return res, nil
		},
	}
}
