package bench

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/boxbench/boxbench/internal/logger"
)

// Plan describes everything a Coordinator needs to run one kind of test:
// the ordered phase list, the weight table for composite scoring, and
// optional resource hooks.
type Plan struct {
	// Kind names the test (e.g. "cpu", "disk") for logging and display.
	Kind string

	// Phases run in order; order is preserved in State.Results.
	Phases []Phase

	// Weights maps phase Name to its share of the composite score.
	Weights map[string]float64

	// Precheck, when set, runs before any phase. An error short-circuits the
	// run into StatusFailed without executing a single phase (used by the
	// disk plan's free-space check).
	Precheck func() error

	// Cleanup, when set, always runs after the run reaches a terminal state,
	// whether Completed, Failed, or panicked (used to remove scratch files).
	Cleanup func()
}

// Coordinator owns the shared state for one test kind: the lock-guarded
// State, the dirty flag consumed by the polling UI, and the start-once guard
// that prevents duplicate workers. Construct one per test kind and share it
// by reference between the triggering code and the polling loop.
//
// Workers tag every state write with the generation captured at spawn time;
// writes from a stale generation are discarded, so a lingering worker from a
// previous run can never corrupt a newer run's state.
type Coordinator struct {
	plan    Plan
	spawner Spawner
	log     logger.Logger
	now     func() time.Time

	mu    sync.Mutex
	state State
	gen   uint64 // guarded by mu; bumped once per Start

	dirty   atomic.Bool
	started atomic.Bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSpawner overrides the default goroutine spawner.
func WithSpawner(s Spawner) Option {
	return func(c *Coordinator) { c.spawner = s }
}

// WithLogger sets the coordinator's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithClock overrides the clock, for tests that need fixed timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a Coordinator for the given plan.
func New(plan Plan, opts ...Option) *Coordinator {
	c := &Coordinator{
		plan: plan,
		log:  logger.Noop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.spawner == nil {
		c.spawner = NewGoSpawner(c.log)
	}
	return c
}

// Kind returns the plan's test kind.
func (c *Coordinator) Kind() string {
	return c.plan.Kind
}

// Start triggers a run. It is safe to call repeatedly and from concurrent
// goroutines: only the caller that flips the start guard spawns a worker and
// returns true; every other caller is a no-op returning false. Errors are
// never returned here; failures surface through the Err field of snapshots.
func (c *Coordinator) Start() bool {
	if !c.started.CompareAndSwap(false, true) {
		return false
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state = State{
		Status:      StatusRunning,
		TotalPhases: len(c.plan.Phases),
		Results:     make([]Result, 0, len(c.plan.Phases)+1),
		StartedAt:   c.now(),
	}
	c.dirty.Store(true)
	c.mu.Unlock()

	c.log.Debug("%s: run %d starting with %d phases", c.plan.Kind, gen, len(c.plan.Phases))
	c.spawner.Spawn(c.plan.Kind, func() { c.run(gen) })
	return true
}

// Snapshot returns a deep copy of the current state. It only ever holds the
// lock for the duration of the copy; it never waits on phase work, because
// workers drop the lock before executing phases.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// TakeDirty atomically consumes the dirty flag, returning whether any state
// mutation happened since the last call. A true result guarantees a
// subsequent Snapshot reflects at least the mutation that set the flag.
// At most one consumer (the polling loop) should call this.
func (c *Coordinator) TakeDirty() bool {
	return c.dirty.Swap(false)
}

// AdvanceAnimation bumps the cosmetic animation counter. Callable at a higher
// frequency than the state poll; it is a no-op unless a run is active.
func (c *Coordinator) AdvanceAnimation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != StatusRunning {
		return
	}
	c.state.AnimationFrame++
	c.dirty.Store(true)
}

// mutate is the single choke point for state writes: it couples every state
// change to the dirty flag and enforces the generation check. A panicking
// mutator is contained here so shared state can never be left wedged for the
// rest of the process.
func (c *Coordinator) mutate(gen uint64, f func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.log.Debug("%s: dropping write from stale run %d (current %d)", c.plan.Kind, gen, c.gen)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.state = State{
				Status: StatusFailed,
				Err:    fmt.Sprintf("internal state update fault: %v", r),
			}
			c.dirty.Store(true)
			c.log.Error("%s: state update panicked: %v", c.plan.Kind, r)
		}
	}()
	f(&c.state)
	c.dirty.Store(true)
}

// run is the worker loop. It executes off the UI thread, takes the state lock
// only for individual mutations (never across phase work), and contains all
// faults: a panicking phase fails the run, it does not crash the process.
func (c *Coordinator) run(gen uint64) {
	defer c.started.Store(false)
	defer func() {
		if r := recover(); r != nil {
			c.fail(gen, fmt.Sprintf("benchmark panicked: %v", r))
		}
	}()
	if c.plan.Cleanup != nil {
		defer c.plan.Cleanup()
	}

	if c.plan.Precheck != nil {
		if err := c.plan.Precheck(); err != nil {
			c.log.Warn("%s: precheck failed: %v", c.plan.Kind, err)
			c.fail(gen, err.Error())
			return
		}
	}

	total := len(c.plan.Phases)
	for i, phase := range c.plan.Phases {
		c.mutate(gen, func(s *State) {
			s.PhaseIndex = i
			s.PhaseTitle = phase.displayTitle()
		})

		res, err := runPhase(phase)
		if err != nil {
			c.log.Warn("%s: phase %q failed: %v", c.plan.Kind, phase.Name, err)
			c.fail(gen, fmt.Sprintf("%s: %v", phase.displayTitle(), err))
			return
		}

		c.mutate(gen, func(s *State) {
			s.Results = append(s.Results, res)
			s.setProgress(phaseProgress(i, total))
			s.EstimatedPrimary, s.EstimatedSecondary = Aggregate(s.Results, c.plan.Weights)
		})
		c.log.Debug("%s: phase %q done (primary=%d secondary=%d)", c.plan.Kind, res.Name, res.Primary, res.Secondary)
	}

	c.mutate(gen, func(s *State) {
		primary, secondary := Aggregate(s.Results, c.plan.Weights)
		s.Results = append(s.Results, Result{
			Name:      CompositeName,
			Primary:   primary,
			Secondary: secondary,
		})
		s.EstimatedPrimary, s.EstimatedSecondary = primary, secondary
		s.Status = StatusCompleted
		s.PhaseTitle = ""
		s.setProgress(100)
	})
	c.log.Debug("%s: run %d completed", c.plan.Kind, gen)
}

// fail transitions the run into StatusFailed. Progress resets to 0 and
// partial results are discarded; the error string is all a failed page shows.
func (c *Coordinator) fail(gen uint64, msg string) {
	c.mutate(gen, func(s *State) {
		s.Status = StatusFailed
		s.Err = msg
		s.Progress = 0
		s.Results = nil
		s.PhaseTitle = ""
		s.EstimatedPrimary, s.EstimatedSecondary = 0, 0
	})
}

// phaseProgress returns the rounded percentage after finishing phase i of
// total, capped at 99: the bar reaches 100 only on the completion write, so
// it visibly fills only when the run has genuinely finished.
func phaseProgress(i, total int) int {
	pct := (100*(i+1) + total/2) / total
	if pct > 99 {
		pct = 99
	}
	return pct
}

// runPhase executes one phase with a panic boundary, converting an unwind
// into an ordinary error.
func runPhase(p Phase) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("phase panicked: %v", r)
		}
	}()
	return p.Run()
}
