// Package bench implements the asynchronous benchmark execution engine:
// a per-test-kind Coordinator that runs an ordered list of phases on a
// background worker, publishes progress snapshots under a lock, and exposes
// a dirty flag so a polling UI can redraw at a bounded rate.
package bench

import "time"

// Result is the immutable output of one completed phase.
// Primary and Secondary are independently meaningful scores where higher is
// better (for CPU phases: single-core and all-cores throughput; for disk
// phases: IOPS and KiB/s).
type Result struct {
	Name      string
	Primary   uint64
	Secondary uint64
	Duration  time.Duration
	Details   map[string]string
}

// clone returns a deep copy so snapshot readers can never alias the
// coordinator's Details maps.
func (r Result) clone() Result {
	out := r
	if r.Details != nil {
		out.Details = make(map[string]string, len(r.Details))
		for k, v := range r.Details {
			out.Details[k] = v
		}
	}
	return out
}

// Phase is one unit of measured work. Run must be self-contained: it owns its
// own timing and any internal time limits, and returns a Result whose Name
// matches the phase Name. Phases never see coordinator state.
type Phase struct {
	// Name identifies the phase and is the key into the plan's weight table.
	Name string
	// Title is the human-readable label shown while the phase runs.
	Title string
	// Run executes the workload. A returned error (or a panic, which the
	// worker converts to an error) fails the whole run.
	Run func() (Result, error)
}

// displayTitle returns Title, falling back to Name for phases that don't set one.
func (p Phase) displayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}
