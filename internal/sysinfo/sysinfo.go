// Package sysinfo collects a small host snapshot for run logs.
package sysinfo

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

type Snapshot struct {
	Platform      string    `json:"platform"`
	Hostname      string    `json:"hostname"`
	OS            string    `json:"os"`
	KernelVersion string    `json:"kernel_version"`
	CPUCores      int       `json:"cpu_cores"`
	CPUUsage      float64   `json:"cpu_usage"`
	LoadAverage   []float64 `json:"load_average,omitempty"`
	MemoryTotal   uint64    `json:"memory_total"`
	MemoryUsed    uint64    `json:"memory_used"`
	TimestampMs   int64     `json:"timestamp_ms"`
}

// Collect gathers a best-effort snapshot. Individual probe failures leave
// their fields zero rather than failing the whole snapshot.
func Collect(ctx context.Context) Snapshot {
	if ctx == nil {
		ctx = context.Background()
	}

	snap := Snapshot{
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		TimestampMs: time.Now().UnixMilli(),
	}

	if info, err := host.InfoWithContext(ctx); err == nil && info != nil {
		snap.Hostname = info.Hostname
		snap.OS = info.OS
		snap.KernelVersion = info.KernelVersion
	}
	if cores, err := cpu.CountsWithContext(ctx, true); err == nil && cores > 0 {
		snap.CPUCores = cores
	}
	if p, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(p) > 0 {
		snap.CPUUsage = p[0]
	}
	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		snap.LoadAverage = []float64{avg.Load1, avg.Load5, avg.Load15}
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		snap.MemoryTotal = vm.Total
		snap.MemoryUsed = vm.Used
	}

	return snap
}

// LogArgs flattens the snapshot into slog key/value pairs.
func (s Snapshot) LogArgs() []any {
	return []any{
		"platform", s.Platform,
		"hostname", s.Hostname,
		"os", s.OS,
		"cpu_cores", s.CPUCores,
		"cpu_usage", s.CPUUsage,
		"memory_total", s.MemoryTotal,
		"memory_used", s.MemoryUsed,
	}
}
