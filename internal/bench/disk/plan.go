// Package disk assembles the disk I/O benchmark plan: a scratch file is laid
// down in a temporary directory, then exercised with 4K random write, 4K
// random read, 64K sequential, and mixed 70/30 phases. Scores are IOPS
// (primary) and KiB/s (secondary).
package disk

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	psdisk "github.com/shirou/gopsutil/v4/disk"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/errors"
	"github.com/boxbench/boxbench/internal/util"
)

// Kind is the test-kind name for the disk plan.
const Kind = "disk"

// Phase names, also the keys of the weight table. PhasePrepare is
// deliberately absent from the table: it lays down the scratch file and its
// numbers are diagnostic only, so the aggregator ignores it.
const (
	PhasePrepare   = "disk_prepare"
	PhaseRandWrite = "disk_rand_write_4k"
	PhaseRandRead  = "disk_rand_read_4k"
	PhaseSeq       = "disk_seq_64k"
	PhaseMixed     = "disk_mixed_70_30"
)

const (
	smallBlock = 4 * 1024
	largeBlock = 64 * 1024
)

// Options tune the disk plan. The zero value picks sensible defaults.
type Options struct {
	// Dir is where the scratch directory is created (default os.TempDir()).
	Dir string
	// FileSize is the scratch file size in bytes (default 64 MiB).
	FileSize int64
	// PhaseDuration is the wall-clock budget of each timed phase.
	PhaseDuration time.Duration
	// MinFree is the free space the precheck requires (default 2x FileSize).
	MinFree uint64
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = os.TempDir()
	}
	if o.FileSize <= 0 {
		o.FileSize = 64 * 1024 * 1024
	}
	if o.PhaseDuration <= 0 {
		o.PhaseDuration = time.Second
	}
	if o.MinFree == 0 {
		o.MinFree = uint64(o.FileSize) * 2
	}
	return o
}

// Weights returns the default per-phase weight table as a fresh map.
func Weights() map[string]float64 {
	return map[string]float64{
		PhaseRandWrite: 0.30,
		PhaseRandRead:  0.30,
		PhaseSeq:       0.25,
		PhaseMixed:     0.15,
	}
}

// NewPlan builds the disk benchmark plan. The scratch directory is owned by
// the running worker: the precheck verifies free space before anything is
// written, and cleanup removes the directory on every terminal state.
func NewPlan(opts Options) bench.Plan {
	o := opts.withDefaults()
	scratch := filepath.Join(o.Dir, "boxbench-disk")
	path := filepath.Join(scratch, "testfile.bin")

	return bench.Plan{
		Kind:     Kind,
		Precheck: func() error { return checkFreeSpace(o.Dir, o.MinFree) },
		Cleanup:  func() { os.RemoveAll(scratch) },
		Phases: []bench.Phase{
			{
				Name:  PhasePrepare,
				Title: "Preparing test file",
				Run:   func() (bench.Result, error) { return prepare(scratch, path, o.FileSize) },
			},
			{
				Name:  PhaseRandWrite,
				Title: "4K random write",
				Run:   func() (bench.Result, error) { return randWrite(path, o) },
			},
			{
				Name:  PhaseRandRead,
				Title: "4K random read",
				Run:   func() (bench.Result, error) { return randRead(path, o) },
			},
			{
				Name:  PhaseSeq,
				Title: "64K sequential read/write",
				Run:   func() (bench.Result, error) { return sequential(path, o) },
			},
			{
				Name:  PhaseMixed,
				Title: "Mixed 70/30 read/write",
				Run:   func() (bench.Result, error) { return mixed(path, o) },
			},
		},
		Weights: Weights(),
	}
}

// checkFreeSpace verifies the target filesystem has room for the scratch
// file before a single byte is written.
func checkFreeSpace(dir string, minFree uint64) error {
	usage, err := psdisk.Usage(dir)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrDisk,
			fmt.Sprintf("Cannot stat filesystem at %s", dir),
			"Check the scratch directory exists and is readable")
	}
	if usage.Free < minFree {
		return errors.New(errors.ErrDisk,
			fmt.Sprintf("Insufficient free space at %s: %s free, %s required",
				dir, util.Bytes(usage.Free), util.Bytes(minFree)),
			"Free up space or point disk.scratch_dir at a larger filesystem")
	}
	return nil
}
