package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/director"
	"github.com/ivlev/adforge/internal/logger"
	"github.com/ivlev/adforge/internal/system"
	"github.com/ivlev/adforge/internal/video"

	"go.uber.org/zap"
)

var (
	ErrNoImages         = errors.New("no images supplied")
	ErrEmptyDescription = errors.New("empty description")
	ErrNoScenes         = errors.New("no scenes generated")
	ErrNothingToRender  = errors.New("nothing to render")
)

// PlanGenerator produces a scene plan from a description.
type PlanGenerator interface {
	Generate(ctx context.Context, description string) director.Plan
}

// AudioMuxer attaches an audio track to a finished video.
type AudioMuxer interface {
	Mux(ctx context.Context, videoPath, audioPath, outputPath string) (string, error)
}

// Request is the input of one generation run.
type Request struct {
	Images      []image.Image
	Description string
	AudioPath   string         // optional
	Plan        *director.Plan // skips the model call when set
}

// Result is what a successful run produced.
type Result struct {
	VideoPath string
	Plan      director.Plan
	Warning   string
	Stats     system.RunStats
}

// AdProject runs the whole pipeline: plan, render, mux.
type AdProject struct {
	Config    *config.Config
	Director  PlanGenerator
	Assembler *Assembler
	Muxer     AudioMuxer
	log       *zap.Logger
}

func NewAdProject(cfg *config.Config, dir PlanGenerator, asm *Assembler, mux AudioMuxer, log *zap.Logger) *AdProject {
	return &AdProject{
		Config:    cfg,
		Director:  dir,
		Assembler: asm,
		Muxer:     mux,
		log:       logger.OrNop(log),
	}
}

func (p *AdProject) Run(ctx context.Context, req Request) (Result, error) {
	res, err := p.run(ctx, req)
	status := "success"
	switch {
	case err != nil:
		status = "error"
	case res.Warning != "":
		status = "warning"
	}
	generationsTotal.WithLabelValues(status).Inc()
	return res, err
}

func (p *AdProject) run(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	var res Result
	res.Stats.BuildVersion = p.Config.BuildVersion

	if len(req.Images) == 0 {
		return res, ErrNoImages
	}
	if req.Plan == nil && strings.TrimSpace(req.Description) == "" {
		return res, ErrEmptyDescription
	}

	planStart := time.Now()
	var plan director.Plan
	if req.Plan != nil {
		plan = *req.Plan
		plan.Normalize()
		p.log.Info("using preloaded scene plan", zap.Int("scenes", len(plan.Scenes)))
	} else {
		plan = p.Director.Generate(ctx, req.Description)
	}
	res.Stats.PlanTime = time.Since(planStart)
	res.Plan = plan

	if plan.IsEmpty() {
		return res, ErrNoScenes
	}

	stats, err := p.Assembler.Render(ctx, req.Images, plan, p.Config.OutputVideo)
	if err != nil {
		return res, fmt.Errorf("render video: %w", err)
	}
	res.VideoPath = p.Config.OutputVideo
	res.Stats.Scenes = stats.Scenes
	res.Stats.Frames = stats.Frames
	res.Stats.RenderTime = stats.Duration

	if req.AudioPath != "" {
		muxStart := time.Now()
		path, err := p.Muxer.Mux(ctx, res.VideoPath, req.AudioPath, p.Config.MuxedVideo)
		res.Stats.MuxTime = time.Since(muxStart)
		switch {
		case errors.Is(err, video.ErrMuxerUnavailable):
			res.Warning = "audio skipped: ffmpeg not found, video has no sound"
			p.log.Warn(res.Warning)
		case err != nil:
			return res, fmt.Errorf("mux audio: %w", err)
		default:
			res.VideoPath = path
		}
	}

	res.Stats.Total = time.Since(start)
	return res, nil
}
