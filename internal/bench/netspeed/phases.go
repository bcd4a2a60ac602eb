package netspeed

import (
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/boxbench/boxbench/internal/bench"
)

// latencyLanes is the connection count of the parallel latency pass.
const latencyLanes = 4

// latency measures serial request/response round trips against a loopback
// echo server: primary is round trips per second on one connection,
// secondary the total across parallel connections.
func latency(o Options) (bench.Result, error) {
	srv, err := newEchoServer()
	if err != nil {
		return bench.Result{}, err
	}
	defer srv.close()

	start := time.Now()
	single, err := pingLoop(srv.addr, o.PhaseDuration)
	if err != nil {
		return bench.Result{}, fmt.Errorf("latency probe: %w", err)
	}

	var parallel atomic.Uint64
	var firstErr atomic.Value
	var wg sync.WaitGroup
	wg.Add(latencyLanes)
	for i := 0; i < latencyLanes; i++ {
		go func() {
			defer wg.Done()
			n, err := pingLoop(srv.addr, o.PhaseDuration)
			if err != nil {
				firstErr.CompareAndSwap(nil, err)
				return
			}
			parallel.Add(n)
		}()
	}
	wg.Wait()
	if err, ok := firstErr.Load().(error); ok && err != nil {
		return bench.Result{}, fmt.Errorf("parallel latency probe: %w", err)
	}

	secs := o.PhaseDuration.Seconds()
	rps := uint64(float64(single) / secs)
	avgMicros := float64(0)
	if single > 0 {
		avgMicros = secs / float64(single) * 1e6
	}
	return bench.Result{
		Name:      PhaseLatency,
		Primary:   rps,
		Secondary: uint64(float64(parallel.Load()) / secs),
		Duration:  time.Since(start),
		Details: map[string]string{
			"avg_rtt_us":  fmt.Sprintf("%.1f", avgMicros),
			"connections": fmt.Sprintf("%d", latencyLanes),
		},
	}, nil
}

// pingLoop runs one-byte write/read round trips on a fresh connection until
// the deadline, returning how many completed.
func pingLoop(addr string, d time.Duration) (uint64, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	// Hard stop so a wedged connection cannot hang the worker forever.
	if err := conn.SetDeadline(time.Now().Add(d + 5*time.Second)); err != nil {
		return 0, err
	}

	var buf [1]byte
	var trips uint64
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if _, err := conn.Write(buf[:]); err != nil {
			return trips, err
		}
		if _, err := io.ReadFull(conn, buf[:]); err != nil {
			return trips, err
		}
		trips++
	}
	return trips, nil
}

// download measures how fast the client side can drain a loopback sender.
func download(o Options) (bench.Result, error) {
	srv, err := newStreamServer(o.BlockSize)
	if err != nil {
		return bench.Result{}, err
	}
	defer srv.close()

	conn, err := net.Dial("tcp", srv.addr)
	if err != nil {
		return bench.Result{}, fmt.Errorf("download probe: %w", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(o.PhaseDuration + 5*time.Second)); err != nil {
		return bench.Result{}, err
	}

	start := time.Now()
	buf := make([]byte, o.BlockSize)
	var bytes uint64
	deadline := time.Now().Add(o.PhaseDuration)
	for time.Now().Before(deadline) {
		n, err := conn.Read(buf)
		if err != nil {
			return bench.Result{}, fmt.Errorf("download probe: %w", err)
		}
		bytes += uint64(n)
	}

	return throughputResult(PhaseDownload, bytes, time.Since(start)), nil
}

// upload measures how fast the client side can push into a loopback sink.
func upload(o Options) (bench.Result, error) {
	srv, err := newSinkServer()
	if err != nil {
		return bench.Result{}, err
	}
	defer srv.close()

	conn, err := net.Dial("tcp", srv.addr)
	if err != nil {
		return bench.Result{}, fmt.Errorf("upload probe: %w", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(o.PhaseDuration + 5*time.Second)); err != nil {
		return bench.Result{}, err
	}

	start := time.Now()
	block := make([]byte, o.BlockSize)
	for i := range block {
		block[i] = byte(i)
	}
	var bytes uint64
	deadline := time.Now().Add(o.PhaseDuration)
	for time.Now().Before(deadline) {
		n, err := conn.Write(block)
		if err != nil {
			return bench.Result{}, fmt.Errorf("upload probe: %w", err)
		}
		bytes += uint64(n)
	}

	return throughputResult(PhaseUpload, bytes, time.Since(start)), nil
}

// throughputResult scores a transfer: Mbit/s primary, KiB/s secondary.
func throughputResult(name string, bytes uint64, elapsed time.Duration) bench.Result {
	secs := elapsed.Seconds()
	var mbit, kib float64
	if secs > 0 {
		mbit = float64(bytes) * 8 / 1e6 / secs
		kib = float64(bytes) / 1024 / secs
	}
	return bench.Result{
		Name:      name,
		Primary:   uint64(mbit),
		Secondary: uint64(kib),
		Duration:  elapsed,
		Details: map[string]string{
			"bytes": fmt.Sprintf("%d", bytes),
		},
	}
}

// loopbackServer is a one-shot localhost listener whose per-connection
// behavior is supplied by the phase.
type loopbackServer struct {
	ln   net.Listener
	addr string
}

func newLoopbackServer(handle func(net.Conn)) (*loopbackServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("loopback listener: %w", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return // listener closed
			}
			go func() {
				defer conn.Close()
				handle(conn)
			}()
		}
	}()
	return &loopbackServer{ln: ln, addr: ln.Addr().String()}, nil
}

func (s *loopbackServer) close() {
	s.ln.Close()
}

// newEchoServer echoes every byte back to the sender.
func newEchoServer() (*loopbackServer, error) {
	return newLoopbackServer(func(conn net.Conn) {
		io.Copy(conn, conn)
	})
}

// newStreamServer pushes pattern blocks at the client until the connection
// drops.
func newStreamServer(blockSize int) (*loopbackServer, error) {
	block := make([]byte, blockSize)
	for i := range block {
		block[i] = byte(i * 7)
	}
	return newLoopbackServer(func(conn net.Conn) {
		for {
			if _, err := conn.Write(block); err != nil {
				return
			}
		}
	})
}

// newSinkServer discards everything the client sends.
func newSinkServer() (*loopbackServer, error) {
	return newLoopbackServer(func(conn net.Conn) {
		io.Copy(io.Discard, conn)
	})
}
