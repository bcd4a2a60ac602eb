package ui

import (
	"fmt"
	"strings"

	"github.com/boxbench/boxbench/internal/util"
)

// defaultBarWidth is the progress bar cell count used by the CLI.
const defaultBarWidth = 30

// RenderBar renders a fixed-width progress bar like [████████░░░░] for a
// percentage in 0-100.
func RenderBar(percent, width int) string {
	if width <= 0 {
		width = defaultBarWidth
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// ProgressLine composes the single-line live status shown while a benchmark
// runs: spinner, phase title, bar, and percentage.
func ProgressLine(frame int, title string, percent, barWidth int) string {
	if title == "" {
		title = "working"
	}
	return fmt.Sprintf("%s %-28s %s %3d%%",
		InfoStyle.Render(Spinner(frame)), util.Truncate(title, 28), RenderBar(percent, barWidth), percent)
}
