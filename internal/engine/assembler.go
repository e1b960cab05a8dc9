package engine

import (
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/director"
	"github.com/ivlev/adforge/internal/effects"
	"github.com/ivlev/adforge/internal/logger"
	"github.com/ivlev/adforge/internal/renderer"
	"github.com/ivlev/adforge/internal/system"
	"github.com/ivlev/adforge/internal/video"

	"go.uber.org/zap"
)

// RenderStats describes one finished render.
type RenderStats struct {
	Scenes   int
	Frames   int
	Duration time.Duration
}

// Assembler turns images and a plan into one encoded video.
type Assembler struct {
	Canvas  config.Canvas
	FPS     int
	Overlay *renderer.TextOverlay // nil disables captions
	Badge   *renderer.Badge       // drawn on the final scene, may be nil
	Writers video.FrameWriterFactory
	log     *zap.Logger
}

func NewAssembler(canvas config.Canvas, fps int, overlay *renderer.TextOverlay, writers video.FrameWriterFactory, log *zap.Logger) *Assembler {
	return &Assembler{
		Canvas:  canvas,
		FPS:     fps,
		Overlay: overlay,
		Writers: writers,
		log:     logger.OrNop(log),
	}
}

// Render writes every scene of plan to outputPath, replacing any existing
// file. Nothing is written when images or scenes are empty. On failure
// the partial output is removed.
func (a *Assembler) Render(ctx context.Context, images []image.Image, plan director.Plan, outputPath string) (RenderStats, error) {
	if len(images) == 0 || plan.IsEmpty() {
		return RenderStats{}, ErrNothingToRender
	}

	start := time.Now()
	w, err := a.Writers.Open(ctx, outputPath, a.Canvas, a.FPS)
	if err != nil {
		return RenderStats{}, fmt.Errorf("open encoder: %w", err)
	}

	stats, err := a.renderScenes(ctx, w, images, plan)
	if cerr := w.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("finalize video: %w", cerr)
	}
	if err != nil {
		os.Remove(outputPath)
		return stats, err
	}

	stats.Duration = time.Since(start)
	renderDuration.Observe(stats.Duration.Seconds())
	a.log.Info("video rendered",
		zap.String("output", outputPath),
		zap.Int("scenes", stats.Scenes),
		zap.Int("frames", stats.Frames),
		zap.Duration("elapsed", stats.Duration),
	)
	return stats, nil
}

func (a *Assembler) renderScenes(ctx context.Context, w video.FrameWriter, images []image.Image, plan director.Plan) (RenderStats, error) {
	var stats RenderStats
	rect := image.Rect(0, 0, a.Canvas.Width, a.Canvas.Height)
	last := len(plan.Scenes) - 1

	// Scenes often reuse an image; fit each one once.
	fitted := make(map[int]*image.RGBA)

	for i, scene := range plan.Scenes {
		idx := scene.ResolveImageIndex(len(images))
		base, ok := fitted[idx]
		if !ok {
			base = renderer.Fit(images[idx], a.Canvas)
			fitted[idx] = base
		}

		total := scene.FrameCount(a.FPS)
		a.log.Debug("rendering scene",
			zap.Int("scene", i),
			zap.Int("image", idx),
			zap.String("motion", string(scene.Motion)),
			zap.Int("frames", total),
		)

		for f := 0; f < total; f++ {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			frame := system.GetFrame(rect)
			effects.ApplyMotion(frame, base, f, total, scene.Motion, a.Canvas)
			if a.Overlay != nil {
				a.Overlay.Draw(frame, scene.Text, f, total)
			}
			if i == last {
				a.Badge.Draw(frame, f, total)
			}

			err := w.WriteFrame(frame)
			system.PutFrame(frame)
			if err != nil {
				return stats, fmt.Errorf("scene %d frame %d: %w", i, f, err)
			}
			stats.Frames++
			framesRendered.Inc()
		}

		stats.Scenes++
		scenesRendered.Inc()
	}
	return stats, nil
}
