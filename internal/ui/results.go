package ui

import (
	"fmt"
	"strings"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/util"
)

// ScoreLabels names the two score columns for a test kind.
type ScoreLabels struct {
	Primary   string
	Secondary string
}

// Labels per test kind; the engine itself is agnostic about what the two
// score paths mean.
var (
	CPULabels  = ScoreLabels{Primary: "single-core", Secondary: "multi-core"}
	DiskLabels = ScoreLabels{Primary: "IOPS", Secondary: "KiB/s"}
	NetLabels  = ScoreLabels{Primary: "Mbit/s", Secondary: "KiB/s"}
)

// LabelsFor returns the score column labels for a test kind.
func LabelsFor(kind string) ScoreLabels {
	switch kind {
	case "disk":
		return DiskLabels
	case "net":
		return NetLabels
	default:
		return CPULabels
	}
}

// RenderResults renders completed phase results as an aligned table. The
// trailing composite row, when present, is set off from the per-phase rows.
func RenderResults(results []bench.Result, labels ScoreLabels) string {
	if len(results) == 0 {
		return MutedStyle.Render("no results")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-32s %12s %12s %10s\n",
		"phase", labels.Primary, labels.Secondary, "duration")
	b.WriteString(MutedStyle.Render(strings.Repeat("─", 70)) + "\n")

	for _, r := range results {
		if r.Name == bench.CompositeName {
			b.WriteString(MutedStyle.Render(strings.Repeat("─", 70)) + "\n")
			fmt.Fprintf(&b, "%s %12d %12d\n",
				BoldStyle.Render(util.PadRight("composite score", 32)), r.Primary, r.Secondary)
			continue
		}
		fmt.Fprintf(&b, "%-32s %12d %12d %10s\n",
			r.Name, r.Primary, r.Secondary, util.ShortDuration(r.Duration))
	}
	return b.String()
}
