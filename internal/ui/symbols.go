package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Run completed successfully
	SymbolFail     = "✗" // Run failed
	SymbolPending  = "○" // Not yet started
	SymbolProgress = "◐" // In progress
)

// SpinnerFrames is the animation cycle for running benchmarks, indexed by
// the coordinator's animation frame counter.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner returns the spinner glyph for an animation frame.
func Spinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return SpinnerFrames[frame%len(SpinnerFrames)]
}
