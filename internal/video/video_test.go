package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/ivlev/adforge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	e := NewFFmpegStreamEncoder("", "", 0, nil)
	assert.Equal(t, "ffmpeg", e.Binary)
	assert.Equal(t, "libx264", e.Encoder)
	assert.Equal(t, 23, e.Quality)

	args := e.buildArgs("out.mp4", config.Portrait, 30)
	assert.Subset(t, args, []string{"pipe:", "rawvideo", "rgba", "1080x1920", "30", "yuv420p", "libx264", "-crf", "23", "-preset", "medium", "out.mp4", "-y"})
}

func TestBuildArgsHardwareQuality(t *testing.T) {
	args := NewFFmpegStreamEncoder("", "h264_videotoolbox", 75, nil).buildArgs("out.mp4", config.Landscape, 30)
	assert.Subset(t, args, []string{"h264_videotoolbox", "-b:v", "7500k", "1920x1080"})
	assert.NotContains(t, args, "-crf")
}

func TestOpenWithoutFFmpeg(t *testing.T) {
	_, err := NewFFmpegStreamEncoder("adforge-missing-ffmpeg", "", 0, nil).
		Open(context.Background(), filepath.Join(t.TempDir(), "x.mp4"), config.Portrait, 30)
	assert.Error(t, err)
}

func TestEncoderFailureReportedOnClose(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	canvas := config.Canvas{Width: 16, Height: 16}
	w, err := NewFFmpegStreamEncoder("ffmpeg", "adforge_no_such_encoder", 1, nil).
		Open(context.Background(), filepath.Join(t.TempDir(), "bad.mp4"), canvas, 30)
	require.NoError(t, err)

	frame := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	for i := 0; i < 50; i++ {
		if w.WriteFrame(frame) != nil {
			break
		}
	}
	err = w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg wait error")
}

func TestWriteRawRGBASubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(2, 2, color.RGBA{R: 9, A: 255})
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)

	var buf bytes.Buffer
	require.NoError(t, writeRawRGBA(&buf, sub))
	assert.Equal(t, 2*2*4, buf.Len())
	assert.Equal(t, byte(9), buf.Bytes()[0])
}

func TestMuxArgs(t *testing.T) {
	args := muxArgs("in.mp4", "song.mp3", "out.mp4")
	assert.Contains(t, args, "-shortest")
	assert.Contains(t, args, "copy")
	assert.Contains(t, args, "aac")
	assert.Contains(t, args, "-y")
	assert.Contains(t, args, "out.mp4")
}

func TestMuxWithoutFFmpegKeepsInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "silent.mp4")
	audio := filepath.Join(dir, "track.mp3")
	require.NoError(t, os.WriteFile(in, []byte("video-bytes"), 0644))
	require.NoError(t, os.WriteFile(audio, []byte("audio-bytes"), 0644))

	m := NewMuxer("adforge-missing-ffmpeg", nil)
	got, err := m.Mux(context.Background(), in, audio, filepath.Join(dir, "out.mp4"))
	require.ErrorIs(t, err, ErrMuxerUnavailable)
	assert.Equal(t, in, got)

	data, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
	assert.NoFileExists(t, filepath.Join(dir, "out.mp4"))
}

func TestEncodeWithFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	canvas := config.Canvas{Width: 64, Height: 32}
	out := filepath.Join(t.TempDir(), "clip.mp4")

	w, err := NewFFmpegStreamEncoder("ffmpeg", "libx264", 0, nil).Open(context.Background(), out, canvas, 30)
	require.NoError(t, err)

	frame := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	for i := 0; i < 10; i++ {
		require.NoError(t, w.WriteFrame(frame))
	}
	require.Error(t, w.WriteFrame(image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
