package bench

import "github.com/boxbench/boxbench/internal/logger"

// Spawner abstracts how a coordinator's worker is scheduled, so the engine
// does not care whether a run is backed by a goroutine, a pool, or a
// synchronous call in tests. Production spawners must not block on fn
// completing; SyncSpawner deliberately does, to make tests deterministic.
type Spawner interface {
	Spawn(name string, fn func())
}

// goSpawner runs each worker on its own goroutine. Workers are not reused
// across runs; every retry gets a fresh spawn.
type goSpawner struct {
	log logger.Logger
}

// NewGoSpawner returns the production Spawner backed by plain goroutines.
func NewGoSpawner(log logger.Logger) Spawner {
	if log == nil {
		log = logger.Noop()
	}
	return &goSpawner{log: log}
}

func (g *goSpawner) Spawn(name string, fn func()) {
	g.log.Debug("spawning worker %q", name)
	go fn()
}

// SyncSpawner runs the worker inline on the caller's goroutine. Test helper:
// it makes Start deterministic, at the cost of Start blocking until the run
// finishes.
type SyncSpawner struct{}

func (SyncSpawner) Spawn(name string, fn func()) {
	fn()
}
