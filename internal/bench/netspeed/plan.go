// Package netspeed assembles the network probe plan. There is no external
// speed-test server involved: all three phases run against a loopback TCP
// listener owned by the phase, so the numbers characterize the local network
// stack rather than an ISP path.
package netspeed

import (
	"time"

	"github.com/boxbench/boxbench/internal/bench"
)

// Kind is the test-kind name for the network plan.
const Kind = "net"

// Phase names, also the keys of the weight table.
const (
	PhaseLatency  = "net_latency"
	PhaseDownload = "net_download"
	PhaseUpload   = "net_upload"
)

// Options tune the network plan. The zero value picks sensible defaults.
type Options struct {
	// PhaseDuration is the wall-clock budget of each timed phase.
	PhaseDuration time.Duration
	// BlockSize is the transfer unit of the throughput phases (default 256 KiB).
	BlockSize int
}

func (o Options) withDefaults() Options {
	if o.PhaseDuration <= 0 {
		o.PhaseDuration = time.Second
	}
	if o.BlockSize <= 0 {
		o.BlockSize = 256 * 1024
	}
	return o
}

// Weights returns the default per-phase weight table as a fresh map.
func Weights() map[string]float64 {
	return map[string]float64{
		PhaseLatency:  0.20,
		PhaseDownload: 0.40,
		PhaseUpload:   0.40,
	}
}

// NewPlan builds the network probe plan.
func NewPlan(opts Options) bench.Plan {
	o := opts.withDefaults()

	return bench.Plan{
		Kind: Kind,
		Phases: []bench.Phase{
			{
				Name:  PhaseLatency,
				Title: "Loopback latency",
				Run:   func() (bench.Result, error) { return latency(o) },
			},
			{
				Name:  PhaseDownload,
				Title: "Download throughput",
				Run:   func() (bench.Result, error) { return download(o) },
			},
			{
				Name:  PhaseUpload,
				Title: "Upload throughput",
				Run:   func() (bench.Result, error) { return upload(o) },
			},
		},
		Weights: Weights(),
	}
}
