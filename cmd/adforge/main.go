package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/director"
	"github.com/ivlev/adforge/internal/engine"
	"github.com/ivlev/adforge/internal/llm"
	"github.com/ivlev/adforge/internal/logger"
	"github.com/ivlev/adforge/internal/renderer"
	"github.com/ivlev/adforge/internal/source"
	"github.com/ivlev/adforge/internal/system"
	"github.com/ivlev/adforge/internal/video"

	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	system.InitResourceLimits()

	dirs := []string{"input/audio", "input/images", "output", director.DefaultPlansDir}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[-] Configuration error: %v", err)
	}
	cfg.BuildVersion = Version

	imagesPtr := flag.String("images", "input/images", "Image directory, single image, comma separated list, or PDF catalogue")
	descriptionPtr := flag.String("description", "", "Ad description sent to the model")
	audioPtr := flag.String("audio", "", "Audio track (default: newest file in input/audio/)")
	noAudioPtr := flag.Bool("no-audio", false, "Do not attach any audio")
	presetPtr := flag.String("preset", cfg.Preset, "Aspect preset: 9:16 (Shorts/Reels) or 16:9")
	outputPtr := flag.String("output", cfg.OutputVideo, "Silent video path")
	muxedPtr := flag.String("output-audio", cfg.MuxedVideo, "Video with audio path")
	planPtr := flag.String("plan", "", "Render a saved plan instead of calling the model (\"latest\" picks the newest in output/plans)")
	planOutPtr := flag.String("plan-out", "", "Save the generated plan as YAML (\"auto\" for a timestamped file in output/plans)")
	ctaPtr := flag.String("cta-url", cfg.CTAURL, "URL encoded as a QR badge on the final scene")
	fontPtr := flag.String("font", cfg.FontPath, "TTF/OTF font for captions")
	fontSizePtr := flag.Float64("font-size", cfg.FontSize, "Caption font size")
	fpsPtr := flag.Int("fps", cfg.FPS, "FPS")
	dpiPtr := flag.Int("dpi", cfg.DPI, "DPI for PDF catalogues")
	qualityPtr := flag.Int("quality", cfg.Quality, "Video quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")
	statsPtr := flag.Bool("stats", cfg.ShowStats, "Print a performance report and append it to benchmark.log")
	flag.Parse()

	cfg.Preset = *presetPtr
	cfg.OutputVideo = *outputPtr
	cfg.MuxedVideo = *muxedPtr
	cfg.CTAURL = *ctaPtr
	cfg.FontPath = *fontPtr
	cfg.FontSize = *fontSizePtr
	cfg.FPS = *fpsPtr
	cfg.DPI = *dpiPtr
	cfg.Quality = *qualityPtr
	cfg.ShowStats = *statsPtr
	if err := cfg.Finalize(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("[-] Logger error: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl, options{
		images:      *imagesPtr,
		description: *descriptionPtr,
		audio:       *audioPtr,
		noAudio:     *noAudioPtr,
		plan:        *planPtr,
		planOut:     *planOutPtr,
	}); err != nil {
		log.Fatalf("[-] %v", err)
	}
}

type options struct {
	images      string
	description string
	audio       string
	noAudio     bool
	plan        string
	planOut     string
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger, opts options) error {
	src, err := source.Open(opts.images)
	if err != nil {
		return fmt.Errorf("image source: %w", err)
	}
	defer src.Close()

	images, warning, err := source.LoadAll(src, cfg.DPI)
	if err != nil {
		return fmt.Errorf("loading images: %w", err)
	}
	if warning != "" {
		fmt.Printf("[!] %s\n", warning)
	}
	fmt.Printf("[*] Images: %d from %s\n", len(images), opts.images)

	req := engine.Request{Images: images, Description: opts.description}

	if opts.plan != "" {
		path := opts.plan
		if path == "latest" {
			if path, err = director.FindLatestPlan(director.DefaultPlansDir); err != nil {
				return err
			}
		}
		plan, err := director.ReadPlan(path)
		if err != nil {
			return fmt.Errorf("reading plan: %w", err)
		}
		req.Plan = &plan
		fmt.Printf("[*] Using plan: %s\n", path)
	}

	if !opts.noAudio {
		req.AudioPath = opts.audio
		if req.AudioPath == "" {
			if latest, err := system.FindLatestAudio("input/audio"); err == nil {
				req.AudioPath = latest
				fmt.Printf("[*] Selected audio: %s\n", latest)
			}
		}
	}

	var dir engine.PlanGenerator
	if req.Plan == nil {
		completer, err := llm.NewCompleter(cfg, zl)
		if err != nil {
			return err
		}
		d := director.NewDirector(completer, cfg.Canvas, zl)
		d.Temperature = cfg.AITemperature
		dir = d
	}

	encoderName := cfg.VideoEncoder
	if encoderName == "" {
		encoderName = system.GetBestH264Encoder(cfg.FFmpegPath)
	}
	if encoderName != "libx264" {
		fmt.Printf("[*] Hardware acceleration detected: %s\n", encoderName)
	}
	enc := video.NewFFmpegStreamEncoder(cfg.FFmpegPath, encoderName, cfg.Quality, zl)

	overlay := renderer.NewTextOverlay(cfg.FontPath, cfg.FontSize, zl)
	asm := engine.NewAssembler(cfg.Canvas, cfg.FPS, overlay, enc, zl)
	if asm.Badge, err = renderer.NewBadge(cfg.CTAURL); err != nil {
		return err
	}

	fmt.Println("--- [PROJECT: AD GENERATOR] ---")
	fmt.Printf("[*] Canvas: %s @ %d FPS | Encoder: %s\n", cfg.Canvas, cfg.FPS, encoderName)
	fmt.Println("-------------------------------")

	project := engine.NewAdProject(cfg, dir, asm, video.NewMuxer(cfg.FFmpegPath, zl), zl)
	res, err := project.Run(ctx, req)
	if errors.Is(err, engine.ErrNoScenes) {
		return fmt.Errorf("%w: the model returned no usable plan", err)
	}
	if err != nil {
		return err
	}
	if res.Warning != "" {
		fmt.Printf("[!] %s\n", res.Warning)
	}

	if opts.planOut != "" && req.Plan == nil {
		path := opts.planOut
		if path == "auto" {
			path = director.GeneratePlanPath(director.DefaultPlansDir)
		}
		if err := director.WritePlan(res.Plan, path); err != nil {
			fmt.Printf("[!] Could not save plan: %v\n", err)
		} else {
			fmt.Printf("[*] Plan saved: %s\n", path)
		}
	}

	if cfg.ShowStats {
		fmt.Print(res.Stats.Report())
		if info, err := system.ProbeMedia(res.VideoPath); err == nil {
			fmt.Printf("[*] Probe: %.2fs, %d frames, audio: %t\n", info.Duration, info.VideoFrames, info.HasAudio)
		}
		if err := engine.AppendBenchmark(engine.BenchmarkLog, opts.images, res.Stats); err != nil {
			fmt.Printf("[!] Could not write %s: %v\n", engine.BenchmarkLog, err)
		}
	}

	fmt.Printf("[+++] Success! Result: %s\n", res.VideoPath)
	return nil
}
