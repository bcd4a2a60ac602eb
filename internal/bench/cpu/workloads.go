package cpu

import (
	"bytes"
	"compress/flate"
	"crypto/sha256"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
)

// sink absorbs workload checksums so the compiler cannot eliminate the
// measured loops.
var sink atomic.Uint64

// chunk is one fixed-size unit of work. It returns a checksum folded into
// sink; iteration counts of chunks per second are the raw score material.
type chunk func() uint64

// runLane executes chunks on the calling goroutine until the deadline and
// returns how many completed.
func runLane(d time.Duration, work chunk) uint64 {
	var iters, check uint64
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		check ^= work()
		iters++
	}
	sink.Add(check)
	return iters
}

// runParallel executes the same chunk on lanes goroutines for the duration
// and returns the total iterations across all lanes.
func runParallel(d time.Duration, lanes int, work chunk) uint64 {
	var total atomic.Uint64
	var wg sync.WaitGroup
	wg.Add(lanes)
	for i := 0; i < lanes; i++ {
		go func() {
			defer wg.Done()
			total.Add(runLane(d, work))
		}()
	}
	wg.Wait()
	return total.Load()
}

// intChunk exercises integer ALU throughput: xorshift mixing plus
// adds/multiplies over a fixed iteration count.
func intChunk() uint64 {
	x := uint64(0x9E3779B97F4A7C15)
	var acc uint64
	for i := 0; i < 10000; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		acc += x*2654435761 + uint64(i)
	}
	return acc
}

// floatChunk exercises scalar floating-point throughput with a mix of
// multiply-adds and a periodic transcendental.
func floatChunk() uint64 {
	f := 1.0001
	var acc float64
	for i := 0; i < 10000; i++ {
		f = f*1.000001 + 0.000001
		acc += f * f
		if i%1000 == 0 {
			acc += math.Sqrt(f)
		}
	}
	return math.Float64bits(acc)
}

const vectorLen = 256

// vectorChunk streams fused multiply-add passes over fixed-length arrays,
// the kind of loop the compiler can vectorize.
func vectorChunk() uint64 {
	var a, b, c [vectorLen]float64
	for i := range a {
		a[i] = float64(i) * 0.5
		b[i] = float64(vectorLen-i) * 0.25
	}
	for pass := 0; pass < 64; pass++ {
		for i := 0; i < vectorLen; i++ {
			c[i] = c[i] + a[i]*b[i]
		}
	}
	return math.Float64bits(c[vectorLen-1])
}

// cryptoBuf is hashed by cryptoChunk; shared read-only input is safe across
// lanes.
var cryptoBuf = func() []byte {
	buf := make([]byte, 4096)
	for i := range buf {
		buf[i] = byte(i*31 + 7)
	}
	return buf
}()

// cryptoChunk measures hashing throughput over a 4 KiB block with SHA-256
// and BLAKE2b.
func cryptoChunk() uint64 {
	s := sha256.Sum256(cryptoBuf)
	b := blake2b.Sum256(cryptoBuf)
	return uint64(s[0]) | uint64(b[0])<<8
}

// compressInput is a compressible pseudo-text block.
var compressInput = func() []byte {
	const phrase = "the quick brown fox jumps over the lazy dog 0123456789 "
	buf := make([]byte, 0, 32*1024)
	for len(buf) < 32*1024 {
		buf = append(buf, phrase...)
	}
	return buf
}()

// compressChunk DEFLATE-compresses a 32 KiB block at the default level.
func compressChunk() uint64 {
	var out bytes.Buffer
	w, err := flate.NewWriter(&out, flate.DefaultCompression)
	if err != nil {
		return 0
	}
	if _, err := w.Write(compressInput); err != nil {
		return 0
	}
	if err := w.Close(); err != nil {
		return 0
	}
	return uint64(out.Len())
}

const memBlock = 1 << 20 // 1 MiB

// memChunk measures memory bandwidth: a block copy followed by a strided
// read pass.
func memChunk() uint64 {
	src := memSrc
	dst := memDstPool.Get().([]byte)
	copy(dst, src)
	var acc uint64
	for i := 0; i < memBlock; i += 64 {
		acc += uint64(dst[i])
	}
	memDstPool.Put(dst)
	return acc
}

var memSrc = func() []byte {
	buf := make([]byte, memBlock)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}()

// memDstPool gives each lane its own destination buffer without per-chunk
// allocation.
var memDstPool = sync.Pool{
	New: func() interface{} { return make([]byte, memBlock) },
}
