// Package util provides common utility functions used across the codebase.
package util

import (
	"fmt"
	"time"
)

// Bytes formats a byte count using binary units (KiB, MiB, GiB, TiB).
func Bytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Rate formats a bytes-per-second throughput value (e.g. "12.4 MiB/s").
func Rate(bytesPerSec float64) string {
	const unit = 1024.0
	switch {
	case bytesPerSec < unit:
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	case bytesPerSec < unit*unit:
		return fmt.Sprintf("%.1f KiB/s", bytesPerSec/unit)
	case bytesPerSec < unit*unit*unit:
		return fmt.Sprintf("%.1f MiB/s", bytesPerSec/(unit*unit))
	default:
		return fmt.Sprintf("%.2f GiB/s", bytesPerSec/(unit*unit*unit))
	}
}

// ShortDuration renders a duration with at most one decimal of precision,
// suitable for per-phase timing columns (e.g. "412ms", "2.3s", "1m05s").
func ShortDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		return fmt.Sprintf("%dm%02ds", m, s)
	}
}
