package cpu

import (
	"testing"
	"time"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeights_CoverAllPhases(t *testing.T) {
	plan := NewPlan(Options{})

	require.Len(t, plan.Phases, 6)
	var total float64
	for _, p := range plan.Phases {
		w, ok := plan.Weights[p.Name]
		assert.True(t, ok, "phase %q must have a weight", p.Name)
		assert.Greater(t, w, 0.0)
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestWeights_ReturnsFreshMap(t *testing.T) {
	a := Weights()
	a[PhaseInt] = 99
	assert.Equal(t, 0.25, Weights()[PhaseInt])
}

func TestNewPlan_WeightOverrides(t *testing.T) {
	plan := NewPlan(Options{Weights: map[string]float64{PhaseMemory: 0.5}})
	assert.Equal(t, 0.5, plan.Weights[PhaseMemory])
	assert.Equal(t, 0.25, plan.Weights[PhaseInt])
}

func TestTimedPhase_ProducesScores(t *testing.T) {
	o := Options{PhaseDuration: 20 * time.Millisecond, Threads: 2}.withDefaults()
	phase := timedPhase(PhaseInt, "Integer arithmetic", o, intChunk)

	res, err := phase.Run()

	require.NoError(t, err)
	assert.Equal(t, PhaseInt, res.Name)
	assert.Greater(t, res.Primary, uint64(0))
	assert.Greater(t, res.Secondary, uint64(0))
	assert.GreaterOrEqual(t, res.Duration, 40*time.Millisecond, "single + parallel pass")
	assert.Equal(t, "2", res.Details["threads"])
}

func TestChunks_ReturnWork(t *testing.T) {
	// Every workload must do observable work so the timed loops cannot be
	// optimized away.
	chunks := map[string]chunk{
		"int":      intChunk,
		"float":    floatChunk,
		"vector":   vectorChunk,
		"crypto":   cryptoChunk,
		"compress": compressChunk,
		"memory":   memChunk,
	}
	for name, c := range chunks {
		assert.NotZero(t, c(), "chunk %q returned a zero checksum", name)
	}
}

func TestFullPlanThroughCoordinator(t *testing.T) {
	if testing.Short() {
		t.Skip("runs all six phases")
	}
	plan := NewPlan(Options{PhaseDuration: 10 * time.Millisecond, Threads: 2})
	c := bench.New(plan, bench.WithSpawner(bench.SyncSpawner{}))

	require.True(t, c.Start())
	snap := c.Snapshot()

	require.Equal(t, bench.StatusCompleted, snap.Status)
	assert.Equal(t, 100, snap.Progress)
	require.Len(t, snap.Results, 7) // 6 phases + composite
	assert.Equal(t, bench.CompositeName, snap.Results[6].Name)
	assert.Greater(t, snap.Results[6].Primary, uint64(0))
	assert.GreaterOrEqual(t, snap.Results[6].Secondary, snap.Results[6].Primary,
		"all-cores score is at least the single-core score")
}
