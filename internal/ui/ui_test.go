package ui

import (
	"testing"
	"time"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/stretchr/testify/assert"
)

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "[░░░░░░░░░░]", RenderBar(0, 10))
	assert.Equal(t, "[█████░░░░░]", RenderBar(50, 10))
	assert.Equal(t, "[██████████]", RenderBar(100, 10))
	// Out-of-range input is clamped, not panicked on.
	assert.Equal(t, "[░░░░░░░░░░]", RenderBar(-5, 10))
	assert.Equal(t, "[██████████]", RenderBar(250, 10))
}

func TestSpinner_Cycles(t *testing.T) {
	assert.Equal(t, SpinnerFrames[0], Spinner(0))
	assert.Equal(t, SpinnerFrames[0], Spinner(len(SpinnerFrames)))
	assert.NotPanics(t, func() { Spinner(-3) })
}

func TestProgressLine(t *testing.T) {
	line := ProgressLine(0, "4K random write", 40, 10)
	assert.Contains(t, line, "4K random write")
	assert.Contains(t, line, "40%")
}

func TestProgressLine_TruncatesLongTitle(t *testing.T) {
	line := ProgressLine(0, "an unreasonably long phase title that would wrap", 5, 10)
	assert.Contains(t, line, "…")
	assert.NotContains(t, line, "would wrap")
}

func TestRenderResults(t *testing.T) {
	results := []bench.Result{
		{Name: "cpu_int", Primary: 1000, Secondary: 4000, Duration: 600 * time.Millisecond},
		{Name: "cpu_float", Primary: 1200, Secondary: 5000, Duration: 2 * time.Second},
		{Name: bench.CompositeName, Primary: 1100, Secondary: 4500},
	}

	out := RenderResults(results, CPULabels)

	assert.Contains(t, out, "cpu_int")
	assert.Contains(t, out, "single-core")
	assert.Contains(t, out, "composite score")
	assert.Contains(t, out, "1100")
	assert.Contains(t, out, "600ms")
}

func TestRenderResults_Empty(t *testing.T) {
	assert.Contains(t, RenderResults(nil, CPULabels), "no results")
}

func TestLabelsFor(t *testing.T) {
	assert.Equal(t, DiskLabels, LabelsFor("disk"))
	assert.Equal(t, NetLabels, LabelsFor("net"))
	assert.Equal(t, CPULabels, LabelsFor("cpu"))
}
