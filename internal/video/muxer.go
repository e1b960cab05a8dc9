package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/adforge/internal/logger"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// ErrMuxerUnavailable means the ffmpeg binary could not be found. The
// silent video is still valid output.
var ErrMuxerUnavailable = errors.New("muxer unavailable")

// Muxer attaches an audio track to a rendered video.
type Muxer struct {
	Binary string
	log    *zap.Logger
}

func NewMuxer(binary string, log *zap.Logger) *Muxer {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Muxer{Binary: binary, log: logger.OrNop(log)}
}

// muxArgs copies the video stream, re-encodes audio to AAC and stops at
// the shorter of the two streams.
func muxArgs(videoPath, audioPath, outputPath string) []string {
	return ffmpeg.Output(
		[]*ffmpeg.Stream{ffmpeg.Input(videoPath), ffmpeg.Input(audioPath)},
		outputPath,
		ffmpeg.KwArgs{
			"c:v":      "copy",
			"c:a":      "aac",
			"shortest": "",
			"loglevel": "error",
		},
	).OverWriteOutput().GetArgs()
}

// Mux writes outputPath from videoPath and audioPath and returns it.
// When ffmpeg is missing it returns videoPath with ErrMuxerUnavailable
// and leaves the input untouched. Any other failure returns videoPath
// with a wrapped error.
func (m *Muxer) Mux(ctx context.Context, videoPath, audioPath, outputPath string) (string, error) {
	bin, err := exec.LookPath(m.Binary)
	if err != nil {
		m.log.Warn("ffmpeg not found, keeping silent video", zap.String("binary", m.Binary))
		return videoPath, fmt.Errorf("%w: %s", ErrMuxerUnavailable, m.Binary)
	}
	if _, err := os.Stat(audioPath); err != nil {
		return videoPath, fmt.Errorf("audio track: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return videoPath, fmt.Errorf("create output dir: %w", err)
		}
	}

	args := muxArgs(videoPath, audioPath, outputPath)
	m.log.Debug("muxing audio", zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outputPath)
		return videoPath, fmt.Errorf("ffmpeg mux error: %v, output: %s", err, string(out))
	}

	m.log.Info("audio muxed", zap.String("output", outputPath))
	return outputPath, nil
}
