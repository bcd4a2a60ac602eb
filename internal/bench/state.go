package bench

import "time"

// Status represents the lifecycle of a test run.
type Status int

const (
	// StatusIdle means no run has started yet.
	StatusIdle Status = iota
	// StatusRunning means a worker is executing phases.
	StatusRunning
	// StatusCompleted means the last run finished all phases.
	StatusCompleted
	// StatusFailed means the last run aborted; Err holds the reason.
	StatusFailed
)

// String returns a human-readable status string.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the snapshot payload shared between the worker and the polling UI.
// Writers go through Coordinator.mutate; readers only ever receive deep
// copies from Coordinator.Snapshot, so a snapshot is safe to keep across
// ticks.
type State struct {
	Status Status

	// Progress is 0-100, non-decreasing while Running, and reaches exactly
	// 100 only when the final phase has genuinely completed.
	Progress int

	// PhaseTitle/PhaseIndex/TotalPhases describe the phase currently
	// executing. PhaseIndex is 0-based and strictly increasing during a run.
	PhaseTitle  string
	PhaseIndex  int
	TotalPhases int

	// Results is append-only during a run and reset when a new run starts.
	// On completion it includes one trailing synthetic composite Result.
	Results []Result

	// EstimatedPrimary/EstimatedSecondary are live composite estimates
	// recomputed from results-so-far after every phase.
	EstimatedPrimary   uint64
	EstimatedSecondary uint64

	// Err is set only when Status is StatusFailed, in which case Results is
	// empty.
	Err string

	// StartedAt is set on each transition into StatusRunning.
	StartedAt time.Time

	// AnimationFrame is a cosmetic counter for spinner animations, advanced
	// by the UI via Coordinator.AdvanceAnimation while Running.
	AnimationFrame int
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	if s.Results != nil {
		out.Results = make([]Result, len(s.Results))
		for i, r := range s.Results {
			out.Results[i] = r.clone()
		}
	}
	return out
}

// Elapsed returns how long the run has been going (or took, for a snapshot
// captured at completion time it keeps growing; display-only).
func (s State) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// setProgress updates Progress, enforcing monotonicity while a run is active.
// Terminal transitions (Failed resetting to 0) set the field directly.
func (s *State) setProgress(p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	if s.Status == StatusRunning && p < s.Progress {
		return
	}
	s.Progress = p
}
