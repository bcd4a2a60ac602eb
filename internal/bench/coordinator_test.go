package bench

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantPhase returns a phase that completes immediately with fixed scores.
func instantPhase(name string, primary, secondary uint64) Phase {
	return Phase{
		Name: name,
		Run: func() (Result, error) {
			return Result{Name: name, Primary: primary, Secondary: secondary}, nil
		},
	}
}

// newSyncCoordinator builds a coordinator whose Start runs the worker inline.
func newSyncCoordinator(plan Plan) *Coordinator {
	return New(plan, WithSpawner(SyncSpawner{}))
}

func TestCoordinator_InitialSnapshotIsIdle(t *testing.T) {
	c := newSyncCoordinator(Plan{Kind: "cpu"})

	snap := c.Snapshot()

	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, 0, snap.Progress)
	assert.Empty(t, snap.Results)
	assert.Empty(t, snap.Err)
}

func TestCoordinator_TwoPhaseScenario(t *testing.T) {
	// End-to-end run with two equally weighted phases: the composite must be
	// the plain average of (1000, 4000) and (1200, 5000).
	plan := Plan{
		Kind: "cpu",
		Phases: []Phase{
			instantPhase("cpu_int", 1000, 4000),
			instantPhase("cpu_float", 1200, 5000),
		},
		Weights: map[string]float64{"cpu_int": 0.5, "cpu_float": 0.5},
	}
	c := newSyncCoordinator(plan)

	require.True(t, c.Start())
	snap := c.Snapshot()

	require.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	require.Len(t, snap.Results, 3) // 2 phases + 1 composite

	composite := snap.Results[2]
	assert.Equal(t, CompositeName, composite.Name)
	assert.Equal(t, uint64(1100), composite.Primary)
	assert.Equal(t, uint64(4500), composite.Secondary)
	assert.Equal(t, uint64(1100), snap.EstimatedPrimary)
	assert.Equal(t, uint64(4500), snap.EstimatedSecondary)
}

func TestCoordinator_ResultOrdering(t *testing.T) {
	plan := Plan{
		Kind: "cpu",
		Phases: []Phase{
			instantPhase("p1", 1, 1),
			instantPhase("p2", 2, 2),
			instantPhase("p3", 3, 3),
		},
		Weights: map[string]float64{"p1": 1, "p2": 1, "p3": 1},
	}
	c := newSyncCoordinator(plan)

	require.True(t, c.Start())
	snap := c.Snapshot()

	require.Len(t, snap.Results, 4)
	assert.Equal(t, "p1", snap.Results[0].Name)
	assert.Equal(t, "p2", snap.Results[1].Name)
	assert.Equal(t, "p3", snap.Results[2].Name)
	assert.Equal(t, CompositeName, snap.Results[3].Name)
}

func TestCoordinator_ProgressMonotonicWithin_Run(t *testing.T) {
	// Phases observe the coordinator's own progress as they execute; with a
	// synchronous spawner the lock is free during phase work.
	var c *Coordinator
	var observed []int

	snapPhase := func(name string) Phase {
		return Phase{
			Name: name,
			Run: func() (Result, error) {
				observed = append(observed, c.Snapshot().Progress)
				return Result{Name: name, Primary: 1, Secondary: 1}, nil
			},
		}
	}

	plan := Plan{
		Kind:    "cpu",
		Phases:  []Phase{snapPhase("a"), snapPhase("b"), snapPhase("c"), snapPhase("d")},
		Weights: map[string]float64{"a": 1, "b": 1, "c": 1, "d": 1},
	}
	c = newSyncCoordinator(plan)

	require.True(t, c.Start())

	require.Len(t, observed, 4)
	for i := 1; i < len(observed); i++ {
		assert.GreaterOrEqual(t, observed[i], observed[i-1],
			"progress must be non-decreasing within a run")
	}
	// Intermediate progress never claims completion.
	for _, p := range observed {
		assert.Less(t, p, 100)
	}
	assert.Equal(t, 100, c.Snapshot().Progress)
}

func TestCoordinator_ProgressCappedAt99UntilFinalPhase(t *testing.T) {
	// With a single phase the generic per-phase formula would yield 100;
	// it must be clamped to 99, with 100 reserved for the completion write.
	var midRun int
	var c *Coordinator

	first := Phase{
		Name: "first",
		Run: func() (Result, error) {
			return Result{Name: "first", Primary: 1, Secondary: 1}, nil
		},
	}
	second := Phase{
		Name: "second",
		Run: func() (Result, error) {
			midRun = c.Snapshot().Progress
			return Result{Name: "second", Primary: 1, Secondary: 1}, nil
		},
	}

	c = newSyncCoordinator(Plan{
		Kind:    "cpu",
		Phases:  []Phase{first, second},
		Weights: map[string]float64{"first": 1, "second": 1},
	})

	require.True(t, c.Start())
	assert.Equal(t, 50, midRun)
	assert.Equal(t, 100, c.Snapshot().Progress)
}

func TestPhaseProgress(t *testing.T) {
	cases := []struct {
		i, total, want int
	}{
		{0, 1, 99}, // last phase caps at 99; 100 is the completion write
		{0, 2, 50},
		{1, 2, 99},
		{0, 3, 33},
		{1, 3, 67},
		{2, 3, 99},
		{0, 6, 17},
		{4, 6, 83},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, phaseProgress(tc.i, tc.total),
			"phaseProgress(%d, %d)", tc.i, tc.total)
	}
}

func TestCoordinator_ExactlyOneWorkerUnderConcurrentStarts(t *testing.T) {
	const callers = 32

	var workerEntries atomic.Int64
	release := make(chan struct{})

	plan := Plan{
		Kind: "cpu",
		Phases: []Phase{{
			Name: "blocked",
			Run: func() (Result, error) {
				workerEntries.Add(1)
				<-release
				return Result{Name: "blocked", Primary: 1, Secondary: 1}, nil
			},
		}},
		Weights: map[string]float64{"blocked": 1},
	}
	c := New(plan) // real goroutine spawner

	var started sync.WaitGroup
	var done sync.WaitGroup
	var wins atomic.Int64
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			started.Wait() // start barrier: maximize contention
			if c.Start() {
				wins.Add(1)
			}
		}()
		started.Done()
	}
	done.Wait()

	assert.Equal(t, int64(1), wins.Load(), "exactly one Start call may win")

	close(release)
	waitForStatus(t, c, StatusCompleted)
	assert.Equal(t, int64(1), workerEntries.Load(), "exactly one worker may be spawned")
}

func TestCoordinator_DirtyFlagRoundTrip(t *testing.T) {
	plan := Plan{
		Kind:    "cpu",
		Phases:  []Phase{instantPhase("a", 1, 1)},
		Weights: map[string]float64{"a": 1},
	}
	c := newSyncCoordinator(plan)

	assert.False(t, c.TakeDirty(), "fresh coordinator has no pending redraw")

	require.True(t, c.Start())

	assert.True(t, c.TakeDirty(), "mutations must set the dirty flag")
	assert.False(t, c.TakeDirty(), "second take must not re-trigger")
}

func TestCoordinator_PanickingPhaseFailsRunAndAllowsRetry(t *testing.T) {
	plan := Plan{
		Kind: "disk",
		Phases: []Phase{{
			Name: "boom",
			Run: func() (Result, error) {
				panic("simulated phase fault")
			},
		}},
		Weights: map[string]float64{"boom": 1},
	}
	c := newSyncCoordinator(plan)

	require.True(t, c.Start())
	snap := c.Snapshot()

	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Err, "simulated phase fault")
	assert.Equal(t, 0, snap.Progress)
	assert.Empty(t, snap.Results, "error and results are mutually exclusive")

	// StartGuard must be cleared: an immediate retry spawns a fresh worker.
	assert.True(t, c.Start())
}

func TestCoordinator_PhaseErrorFailsRun(t *testing.T) {
	plan := Plan{
		Kind: "disk",
		Phases: []Phase{
			instantPhase("ok", 5, 5),
			{
				Name:  "bad",
				Title: "4K random write",
				Run: func() (Result, error) {
					return Result{}, errors.New("scratch file write refused")
				},
			},
		},
		Weights: map[string]float64{"ok": 1, "bad": 1},
	}
	c := newSyncCoordinator(plan)

	require.True(t, c.Start())
	snap := c.Snapshot()

	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Err, "4K random write")
	assert.Contains(t, snap.Err, "scratch file write refused")
	assert.Empty(t, snap.Results)
}

func TestCoordinator_PrecheckShortCircuits(t *testing.T) {
	phaseRan := false
	plan := Plan{
		Kind: "disk",
		Precheck: func() error {
			return errors.New("insufficient free space: need 1.0 GiB")
		},
		Phases: []Phase{{
			Name: "never",
			Run: func() (Result, error) {
				phaseRan = true
				return Result{Name: "never"}, nil
			},
		}},
		Weights: map[string]float64{"never": 1},
	}
	c := newSyncCoordinator(plan)

	require.True(t, c.Start())
	snap := c.Snapshot()

	assert.False(t, phaseRan, "precheck failure must skip all phases")
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Err, "insufficient free space")
	assert.True(t, c.Start(), "guard cleared after precheck failure")
}

func TestCoordinator_CleanupAlwaysRuns(t *testing.T) {
	cases := []struct {
		name  string
		phase Phase
	}{
		{"completed", instantPhase("a", 1, 1)},
		{"failed", Phase{Name: "a", Run: func() (Result, error) { return Result{}, errors.New("nope") }}},
		{"panicked", Phase{Name: "a", Run: func() (Result, error) { panic("nope") }}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cleaned := false
			plan := Plan{
				Kind:    "disk",
				Phases:  []Phase{tc.phase},
				Weights: map[string]float64{"a": 1},
				Cleanup: func() { cleaned = true },
			}
			c := newSyncCoordinator(plan)

			require.True(t, c.Start())
			assert.True(t, cleaned)
		})
	}
}

func TestCoordinator_RerunDiscardsPriorResults(t *testing.T) {
	plan := Plan{
		Kind:    "cpu",
		Phases:  []Phase{instantPhase("a", 10, 20)},
		Weights: map[string]float64{"a": 1},
	}
	c := newSyncCoordinator(plan)

	require.True(t, c.Start())
	first := c.Snapshot()
	require.Equal(t, StatusCompleted, first.Status)
	require.Len(t, first.Results, 2)

	require.True(t, c.Start())
	second := c.Snapshot()
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Len(t, second.Results, 2, "fresh run starts from empty results")
}

func TestCoordinator_StaleGenerationWritesDiscarded(t *testing.T) {
	plan := Plan{
		Kind:    "cpu",
		Phases:  []Phase{instantPhase("a", 10, 20)},
		Weights: map[string]float64{"a": 1},
	}
	c := newSyncCoordinator(plan)

	require.True(t, c.Start()) // generation 1
	require.True(t, c.Start()) // generation 2
	fresh := c.Snapshot()
	c.TakeDirty()

	// A write tagged with the old generation must be dropped without setting
	// the dirty flag.
	c.mutate(1, func(s *State) {
		s.Progress = 1
		s.Results = nil
		s.Status = StatusFailed
	})

	assert.Equal(t, fresh, c.Snapshot(), "stale write must not land")
	assert.False(t, c.TakeDirty(), "stale write must not mark dirty")
}

func TestCoordinator_MutatePanicIsContained(t *testing.T) {
	c := newSyncCoordinator(Plan{Kind: "cpu"})
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	assert.NotPanics(t, func() {
		c.mutate(gen, func(s *State) { panic("mutator bug") })
	})

	snap := c.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Err, "mutator bug")

	// The lock is free and the coordinator still serves reads and writes.
	assert.NotPanics(t, func() { c.Snapshot() })
	assert.True(t, c.TakeDirty())
}

func TestCoordinator_AnimationFrameOnlyWhileRunning(t *testing.T) {
	plan := Plan{
		Kind:    "cpu",
		Phases:  []Phase{instantPhase("a", 1, 1)},
		Weights: map[string]float64{"a": 1},
	}
	c := newSyncCoordinator(plan)

	c.AdvanceAnimation()
	assert.Equal(t, 0, c.Snapshot().AnimationFrame, "no-op while idle")

	require.True(t, c.Start())
	c.AdvanceAnimation()
	assert.Equal(t, 0, c.Snapshot().AnimationFrame, "no-op after completion")
}

func TestCoordinator_SnapshotIsDeepCopy(t *testing.T) {
	plan := Plan{
		Kind: "cpu",
		Phases: []Phase{{
			Name: "a",
			Run: func() (Result, error) {
				return Result{
					Name:    "a",
					Primary: 1, Secondary: 1,
					Details: map[string]string{"threads": "4"},
				}, nil
			},
		}},
		Weights: map[string]float64{"a": 1},
	}
	c := newSyncCoordinator(plan)
	require.True(t, c.Start())

	snap := c.Snapshot()
	snap.Results[0].Details["threads"] = "tampered"
	snap.Results[0].Name = "tampered"

	again := c.Snapshot()
	assert.Equal(t, "a", again.Results[0].Name)
	assert.Equal(t, "4", again.Results[0].Details["threads"])
}

func TestCoordinator_DirtyGuaranteesFreshSnapshot(t *testing.T) {
	// A consumer observing TakeDirty() == true must see at least the state
	// of the mutation that set the flag in its next Snapshot.
	release := make(chan struct{})
	plan := Plan{
		Kind: "cpu",
		Phases: []Phase{
			instantPhase("a", 1, 1),
			{
				Name: "b",
				Run: func() (Result, error) {
					<-release
					return Result{Name: "b", Primary: 1, Secondary: 1}, nil
				},
			},
		},
		Weights: map[string]float64{"a": 1, "b": 1},
	}
	c := New(plan)

	require.True(t, c.Start())

	// Wait until the first phase's result is published.
	deadline := time.After(5 * time.Second)
	for {
		if c.TakeDirty() {
			snap := c.Snapshot()
			if len(snap.Results) >= 1 {
				assert.Equal(t, "a", snap.Results[0].Name)
				break
			}
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for first phase result")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	close(release)
	waitForStatus(t, c, StatusCompleted)
}

// waitForStatus polls snapshots until the coordinator reaches the status or
// the test times out.
func waitForStatus(t *testing.T, c *Coordinator, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Snapshot().Status == want
	}, 5*time.Second, time.Millisecond)
}
