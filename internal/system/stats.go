package system

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// RunStats summarizes one generation run.
type RunStats struct {
	BuildVersion string
	Scenes       int
	Frames       int
	PlanTime     time.Duration
	RenderTime   time.Duration
	MuxTime      time.Duration
	Total        time.Duration
}

// EffectiveFPS is frames rendered per wall-clock second of rendering.
func (s RunStats) EffectiveFPS() float64 {
	if s.RenderTime <= 0 {
		return 0
	}
	return float64(s.Frames) / s.RenderTime.Seconds()
}

// Report formats the stats together with host figures from gopsutil.
func (s RunStats) Report() string {
	rss := "n/a"
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			rss = fmt.Sprintf("%.1f MiB", float64(mem.RSS)/(1<<20))
		}
	}
	cores := "n/a"
	if n, err := cpu.Counts(true); err == nil {
		cores = fmt.Sprintf("%d", n)
	}

	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Scenes: %d | Frames: %d\n"+
			"Plan: %.2fs\n"+
			"Render+Encode: %.2fs\n"+
			"Mux: %.2fs\n"+
			"Total Time: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Process RSS: %s | Logical CPUs: %s\n"+
			"----------------------------\n",
		s.BuildVersion, s.Scenes, s.Frames,
		s.PlanTime.Seconds(), s.RenderTime.Seconds(), s.MuxTime.Seconds(), s.Total.Seconds(),
		s.EffectiveFPS(), rss, cores,
	)
}
