package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/logger"
	"github.com/ivlev/adforge/internal/system"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// FrameWriter consumes canvas-sized frames in order. Close finalizes
// the container; a writer whose Close succeeds has produced a playable
// file.
type FrameWriter interface {
	WriteFrame(frame *image.RGBA) error
	Close() error
}

// FrameWriterFactory opens one FrameWriter per output video.
type FrameWriterFactory interface {
	Open(ctx context.Context, path string, canvas config.Canvas, fps int) (FrameWriter, error)
}

// FFmpegStreamEncoder feeds raw RGBA frames to ffmpeg through an
// io.Pipe and encodes them to H.264 in an MP4 container.
type FFmpegStreamEncoder struct {
	Binary  string
	Encoder string
	Quality int
	log     *zap.Logger
}

func NewFFmpegStreamEncoder(binary, encoder string, quality int, log *zap.Logger) *FFmpegStreamEncoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	if encoder == "" {
		encoder = "libx264"
	}
	if quality <= 0 {
		quality = system.DefaultQuality(encoder)
	}
	return &FFmpegStreamEncoder{
		Binary:  binary,
		Encoder: encoder,
		Quality: quality,
		log:     logger.OrNop(log),
	}
}

// stream describes the ffmpeg graph: raw RGBA frames on stdin, H.264
// yuv420p in an MP4 container out.
func (e *FFmpegStreamEncoder) stream(path string, canvas config.Canvas, fps int) *ffmpeg.Stream {
	out := ffmpeg.KwArgs{
		"pix_fmt":  "yuv420p",
		"c:v":      e.Encoder,
		"movflags": "+faststart",
		"loglevel": "error",
	}
	q := system.QualityArgs(e.Encoder, e.Quality)
	for i := 0; i+1 < len(q); i += 2 {
		out[strings.TrimPrefix(q[i], "-")] = q[i+1]
	}

	return ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgba",
		"s":       canvas.String(),
		"r":       strconv.Itoa(fps),
	}).Output(path, out).OverWriteOutput()
}

func (e *FFmpegStreamEncoder) buildArgs(path string, canvas config.Canvas, fps int) []string {
	return e.stream(path, canvas, fps).GetArgs()
}

// withBinary runs the compiled command with the configured ffmpeg.
func withBinary(bin string) ffmpeg.CompilationOption {
	return func(_ *ffmpeg.Stream, cmd *exec.Cmd) {
		cmd.Path = bin
		if len(cmd.Args) > 0 {
			cmd.Args[0] = bin
		}
	}
}

func (e *FFmpegStreamEncoder) Open(ctx context.Context, path string, canvas config.Canvas, fps int) (FrameWriter, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", fps)
	}
	bin, err := exec.LookPath(e.Binary)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	pr, pw := io.Pipe()
	w := &ffmpegWriter{
		pipe:   pw,
		canvas: canvas,
		done:   make(chan struct{}),
	}
	cmd := e.stream(path, canvas, fps).
		WithInput(pr).
		WithErrorOutput(&w.stderr).
		Compile(withBinary(bin))

	if err := cmd.Start(); err != nil {
		pr.Close()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	go func() {
		w.waitErr = cmd.Wait()
		// Unblocks a pending WriteFrame if ffmpeg exited early.
		pr.CloseWithError(errEncoderExited)
		close(w.done)
	}()
	go func() {
		select {
		case <-ctx.Done():
			cmd.Process.Kill()
			pr.CloseWithError(ctx.Err())
		case <-w.done:
		}
	}()

	e.log.Debug("encoder started",
		zap.String("path", path),
		zap.String("encoder", e.Encoder),
		zap.Stringer("canvas", canvas),
		zap.Int("fps", fps),
	)
	return w, nil
}

var errEncoderExited = errors.New("ffmpeg exited")

type ffmpegWriter struct {
	pipe    *io.PipeWriter
	canvas  config.Canvas
	stderr  bytes.Buffer // read only after done is closed
	done    chan struct{}
	waitErr error
	closed  bool
}

func (w *ffmpegWriter) WriteFrame(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != w.canvas.Width || b.Dy() != w.canvas.Height {
		return fmt.Errorf("frame size %dx%d does not match canvas %s", b.Dx(), b.Dy(), w.canvas)
	}
	if err := writeRawRGBA(w.pipe, frame); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

// Close flushes the stream and waits for ffmpeg. ffmpeg's stderr is
// reported only here, after the process has exited.
func (w *ffmpegWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.pipe.Close()
	<-w.done
	if w.waitErr != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", w.waitErr, w.stderr.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	rgba := img
	if rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
