package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Canvas is the fixed output frame size of one generation run.
type Canvas struct {
	Width  int
	Height int
}

var (
	Portrait  = Canvas{Width: 1080, Height: 1920}
	Landscape = Canvas{Width: 1920, Height: 1080}
)

// Orientation returns "vertical" or "horizontal" for prompt wording.
func (c Canvas) Orientation() string {
	if c.Height > c.Width {
		return "vertical"
	}
	return "horizontal"
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// CanvasForPreset resolves an aspect-ratio choice to a canvas.
func CanvasForPreset(preset string) (Canvas, error) {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "9:16", "portrait", "vertical", "instagram", "":
		return Portrait, nil
	case "16:9", "landscape", "horizontal", "youtube":
		return Landscape, nil
	default:
		return Canvas{}, fmt.Errorf("unknown aspect preset %q (expected 9:16 or 16:9)", preset)
	}
}

type Config struct {
	OutputVideo string  `envconfig:"ADFORGE_OUTPUT_VIDEO" default:"output/final_ad.mp4"`
	MuxedVideo  string  `envconfig:"ADFORGE_MUXED_VIDEO" default:"output/final_ad_with_music.mp4"`
	Preset      string  `envconfig:"ADFORGE_PRESET" default:"9:16"`
	Canvas      Canvas  `ignored:"true"`
	FPS         int     `envconfig:"ADFORGE_FPS" default:"30"`
	FontPath    string  `envconfig:"ADFORGE_FONT_PATH" default:"/System/Library/Fonts/Supplemental/Arial.ttf"`
	FontSize    float64 `envconfig:"ADFORGE_FONT_SIZE" default:"70"`
	CTAURL      string  `envconfig:"ADFORGE_CTA_URL"`
	DPI         int     `envconfig:"ADFORGE_DPI" default:"150"`

	FFmpegPath   string `envconfig:"ADFORGE_FFMPEG_PATH" default:"ffmpeg"`
	VideoEncoder string `envconfig:"ADFORGE_VIDEO_ENCODER"` // empty: detect
	Quality      int    `envconfig:"ADFORGE_QUALITY"`       // 0: encoder default
	ShowStats    bool   `envconfig:"ADFORGE_SHOW_STATS"`

	AIClientType  string        `envconfig:"ADFORGE_AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL     string        `envconfig:"ADFORGE_AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel       string        `envconfig:"ADFORGE_AI_MODEL" default:"gpt-4o-mini"`
	AITimeout     time.Duration `envconfig:"ADFORGE_AI_TIMEOUT" default:"120s"`
	AITemperature float64       `envconfig:"ADFORGE_AI_TEMPERATURE" default:"0.4"`
	// Read from OPENAI_API_KEY, never logged.
	AIAPIKey string `envconfig:"OPENAI_API_KEY"`

	HTTPAddr       string   `envconfig:"ADFORGE_HTTP_ADDR" default:":8080"`
	AllowedOrigins []string `envconfig:"ADFORGE_ALLOWED_ORIGINS"` // empty: any origin
	WorkDir        string   `envconfig:"ADFORGE_WORK_DIR"`

	LogLevel    string `envconfig:"ADFORGE_LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"ADFORGE_LOG_ENCODING" default:"console"`

	BuildVersion string `ignored:"true"`
}

// EnvPrefix is part of every variable name except OPENAI_API_KEY. The
// full names are spelled out in the tags and processed without a prefix,
// so envconfig never falls back to bare names such as FPS or WORK_DIR.
const EnvPrefix = "ADFORGE_"

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finalize resolves derived values after flags have been applied.
func (c *Config) Finalize() error {
	canvas, err := CanvasForPreset(c.Preset)
	if err != nil {
		return err
	}
	c.Canvas = canvas
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.FontSize <= 0 {
		c.FontSize = 70
	}
	if c.WorkDir == "" {
		c.WorkDir = os.TempDir()
	}
	return nil
}
