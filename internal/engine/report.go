package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/adforge/internal/system"
)

// BenchmarkLog is the file run summaries are appended to.
const BenchmarkLog = "benchmark.log"

// AppendBenchmark writes a single summary line for a run to path.
func AppendBenchmark(path, source string, stats system.RunStats) error {
	entry := fmt.Sprintf("[%s] Build: %s | Input: %s | Scenes: %d | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		stats.BuildVersion,
		filepath.Base(source),
		stats.Scenes,
		stats.Frames,
		stats.Total.Seconds(),
		stats.RenderTime.Seconds(),
		stats.EffectiveFPS(),
	)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(entry)
	return err
}
