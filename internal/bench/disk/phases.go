package disk

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/util"
)

// syncEvery bounds how much dirty data accumulates between fsyncs during
// write-heavy phases, without paying for a sync on every operation.
const syncEvery = 256

// prepare creates the scratch directory and fills the test file with
// patterned data so later read phases hit real blocks.
func prepare(scratch, path string, size int64) (bench.Result, error) {
	start := time.Now()

	if err := os.MkdirAll(scratch, 0755); err != nil {
		return bench.Result{}, fmt.Errorf("create scratch dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return bench.Result{}, fmt.Errorf("create test file: %w", err)
	}
	defer f.Close()

	block := patternBlock(largeBlock)
	var written int64
	var ops uint64
	for written < size {
		n, err := f.Write(block)
		if err != nil {
			return bench.Result{}, fmt.Errorf("fill test file: %w", err)
		}
		written += int64(n)
		ops++
	}
	if err := f.Sync(); err != nil {
		return bench.Result{}, fmt.Errorf("sync test file: %w", err)
	}

	elapsed := time.Since(start)
	return bench.Result{
		Name:      PhasePrepare,
		Primary:   perSecond(ops, elapsed),
		Secondary: perSecond(uint64(written)/1024, elapsed),
		Duration:  elapsed,
		Details: map[string]string{
			"file_size": fmt.Sprintf("%d", written),
		},
	}, nil
}

// randWrite measures 4 KiB random writes.
func randWrite(path string, o Options) (bench.Result, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		return bench.Result{}, fmt.Errorf("open for random write: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	block := patternBlock(smallBlock)
	blocks := o.FileSize / smallBlock

	start := time.Now()
	ops, err := timedIO(o.PhaseDuration, func(i uint64) error {
		off := rng.Int63n(blocks) * smallBlock
		if _, err := f.WriteAt(block, off); err != nil {
			return err
		}
		if i%syncEvery == syncEvery-1 {
			return f.Sync()
		}
		return nil
	})
	if err != nil {
		return bench.Result{}, fmt.Errorf("random write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return bench.Result{}, fmt.Errorf("sync after random write: %w", err)
	}

	return ioResult(PhaseRandWrite, ops, smallBlock, time.Since(start)), nil
}

// randRead measures 4 KiB random reads.
func randRead(path string, o Options) (bench.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return bench.Result{}, fmt.Errorf("open for random read: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	buf := make([]byte, smallBlock)
	blocks := o.FileSize / smallBlock

	start := time.Now()
	ops, err := timedIO(o.PhaseDuration, func(uint64) error {
		off := rng.Int63n(blocks) * smallBlock
		_, err := f.ReadAt(buf, off)
		return err
	})
	if err != nil {
		return bench.Result{}, fmt.Errorf("random read: %w", err)
	}

	return ioResult(PhaseRandRead, ops, smallBlock, time.Since(start)), nil
}

// sequential measures 64 KiB sequential access, alternating write and read
// sweeps across the file, wrapping at the end.
func sequential(path string, o Options) (bench.Result, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return bench.Result{}, fmt.Errorf("open for sequential: %w", err)
	}
	defer f.Close()

	block := patternBlock(largeBlock)
	buf := make([]byte, largeBlock)
	blocks := o.FileSize / largeBlock
	var pos int64
	reading := false

	start := time.Now()
	ops, err := timedIO(o.PhaseDuration, func(i uint64) error {
		off := pos * largeBlock
		pos++
		if pos >= blocks {
			pos = 0
			reading = !reading // alternate sweep direction of work
		}
		if reading {
			_, err := f.ReadAt(buf, off)
			return err
		}
		if _, err := f.WriteAt(block, off); err != nil {
			return err
		}
		if i%syncEvery == syncEvery-1 {
			return f.Sync()
		}
		return nil
	})
	if err != nil {
		return bench.Result{}, fmt.Errorf("sequential: %w", err)
	}
	if err := f.Sync(); err != nil {
		return bench.Result{}, fmt.Errorf("sync after sequential: %w", err)
	}

	return ioResult(PhaseSeq, ops, largeBlock, time.Since(start)), nil
}

// mixed measures a 70% read / 30% write random 4 KiB workload.
func mixed(path string, o Options) (bench.Result, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return bench.Result{}, fmt.Errorf("open for mixed: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	block := patternBlock(smallBlock)
	buf := make([]byte, smallBlock)
	blocks := o.FileSize / smallBlock
	var reads, writes uint64

	start := time.Now()
	ops, err := timedIO(o.PhaseDuration, func(i uint64) error {
		off := rng.Int63n(blocks) * smallBlock
		if rng.Intn(10) < 7 {
			reads++
			_, err := f.ReadAt(buf, off)
			return err
		}
		writes++
		if _, err := f.WriteAt(block, off); err != nil {
			return err
		}
		if writes%syncEvery == syncEvery-1 {
			return f.Sync()
		}
		return nil
	})
	if err != nil {
		return bench.Result{}, fmt.Errorf("mixed workload: %w", err)
	}
	if err := f.Sync(); err != nil {
		return bench.Result{}, fmt.Errorf("sync after mixed workload: %w", err)
	}

	res := ioResult(PhaseMixed, ops, smallBlock, time.Since(start))
	res.Details["reads"] = fmt.Sprintf("%d", reads)
	res.Details["writes"] = fmt.Sprintf("%d", writes)
	return res, nil
}

// timedIO repeats op until the deadline, passing the 0-based iteration
// index, and returns how many operations completed.
func timedIO(d time.Duration, op func(i uint64) error) (uint64, error) {
	var ops uint64
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if err := op(ops); err != nil {
			return ops, err
		}
		ops++
	}
	return ops, nil
}

// ioResult scores a phase: IOPS primary, KiB/s secondary.
func ioResult(name string, ops uint64, blockSize int64, elapsed time.Duration) bench.Result {
	kib := ops * uint64(blockSize) / 1024
	details := map[string]string{
		"ops":        fmt.Sprintf("%d", ops),
		"block_size": fmt.Sprintf("%d", blockSize),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		details["throughput"] = util.Rate(float64(ops*uint64(blockSize)) / secs)
	}
	return bench.Result{
		Name:      name,
		Primary:   perSecond(ops, elapsed),
		Secondary: perSecond(kib, elapsed),
		Duration:  elapsed,
		Details:   details,
	}
}

// perSecond converts a count over an elapsed duration into a rate.
func perSecond(n uint64, elapsed time.Duration) uint64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return uint64(float64(n) / secs)
}

// patternBlock returns a block of non-constant bytes so filesystems cannot
// trivially dedupe or compress the writes away.
func patternBlock(size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i*131 + 17)
	}
	return buf
}
