// Package sysinfo collects a point-in-time snapshot of the host for the
// dashboard's system information page.
package sysinfo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/boxbench/boxbench/internal/errors"
	"github.com/boxbench/boxbench/internal/util"
)

// Snapshot is a one-shot view of the host. Collect fills every section it
// can and leaves the rest zero-valued; only a total collection failure is an
// error.
type Snapshot struct {
	Hostname      string
	OS            string
	Platform      string
	KernelVersion string
	Uptime        time.Duration

	CPUModel string
	Cores    int
	Threads  int
	LoadAvg  [3]float64

	MemTotal     uint64
	MemUsed      uint64
	MemAvailable uint64
	SwapTotal    uint64
	SwapUsed     uint64

	Disks []DiskUsage

	CollectedAt time.Time
}

// DiskUsage describes one mounted filesystem.
type DiskUsage struct {
	Mount       string
	Device      string
	FSType      string
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// Collect gathers a snapshot. Individual collectors failing (e.g. no load
// average on some platforms) leave their section empty rather than failing
// the whole snapshot.
func Collect(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{CollectedAt: time.Now()}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrState,
			"Cannot read host information",
			"This platform may not be supported")
	}
	s.Hostname = info.Hostname
	s.OS = info.OS
	s.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	s.KernelVersion = info.KernelVersion
	s.Uptime = time.Duration(info.Uptime) * time.Second

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		s.CPUModel = infos[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		s.Cores = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.Threads = n
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		s.LoadAvg = [3]float64{avg.Load1, avg.Load5, avg.Load15}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemTotal = vm.Total
		s.MemUsed = vm.Used
		s.MemAvailable = vm.Available
	}
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		s.SwapTotal = sw.Total
		s.SwapUsed = sw.Used
	}

	s.Disks = collectDisks(ctx)
	return s, nil
}

// collectDisks returns usage for physical partitions, sorted by mount point.
func collectDisks(ctx context.Context) []DiskUsage {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil
	}
	out := make([]DiskUsage, 0, len(parts))
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		out = append(out, DiskUsage{
			Mount:       p.Mountpoint,
			Device:      p.Device,
			FSType:      p.Fstype,
			Total:       usage.Total,
			Used:        usage.Used,
			UsedPercent: usage.UsedPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mount < out[j].Mount })
	return out
}

// Render formats the snapshot as a plain-text block for the dashboard's
// content pane and the sysinfo command.
func (s *Snapshot) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Host:      %s\n", s.Hostname)
	fmt.Fprintf(&b, "Platform:  %s (%s)\n", s.Platform, s.OS)
	fmt.Fprintf(&b, "Kernel:    %s\n", s.KernelVersion)
	fmt.Fprintf(&b, "Uptime:    %s\n", formatUptime(s.Uptime))
	b.WriteString("\n")

	fmt.Fprintf(&b, "CPU:       %s\n", s.CPUModel)
	fmt.Fprintf(&b, "Cores:     %d physical, %d logical\n", s.Cores, s.Threads)
	fmt.Fprintf(&b, "Load:      %.2f %.2f %.2f\n", s.LoadAvg[0], s.LoadAvg[1], s.LoadAvg[2])
	b.WriteString("\n")

	fmt.Fprintf(&b, "Memory:    %s used / %s total (%s available)\n",
		util.Bytes(s.MemUsed), util.Bytes(s.MemTotal), util.Bytes(s.MemAvailable))
	if s.SwapTotal > 0 {
		fmt.Fprintf(&b, "Swap:      %s used / %s total\n",
			util.Bytes(s.SwapUsed), util.Bytes(s.SwapTotal))
	}

	if len(s.Disks) > 0 {
		b.WriteString("\nFilesystems:\n")
		for _, d := range s.Disks {
			fmt.Fprintf(&b, "  %-20s %8s / %-8s %5.1f%%  %s\n",
				d.Mount, util.Bytes(d.Used), util.Bytes(d.Total), d.UsedPercent, d.FSType)
		}
	}

	return b.String()
}

// formatUptime renders an uptime as "Nd HHhMMm".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh%02dm", days, hours, mins)
	}
	return fmt.Sprintf("%dh%02dm", hours, mins)
}
