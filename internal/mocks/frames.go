package mocks

import (
	"context"
	"crypto/sha256"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/video"
)

// FrameRecorder is a video.FrameWriterFactory that hashes frames instead
// of encoding them. Close writes a small placeholder file at the path.
type FrameRecorder struct {
	mu      sync.Mutex
	Paths   []string
	Hashes  [][32]byte
	Opened  int
	Closed  int
	FailAt  int // WriteFrame fails on this frame number when > 0
	written int
}

func (r *FrameRecorder) Open(_ context.Context, path string, canvas config.Canvas, fps int) (video.FrameWriter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Opened++
	r.Paths = append(r.Paths, path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return &recordingWriter{r: r, path: path}, nil
}

// Frames returns the number of frames written so far.
func (r *FrameRecorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Hashes)
}

type recordingWriter struct {
	r    *FrameRecorder
	path string
}

func (w *recordingWriter) WriteFrame(frame *image.RGBA) error {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	w.r.written++
	if w.r.FailAt > 0 && w.r.written == w.r.FailAt {
		return os.ErrClosed
	}
	w.r.Hashes = append(w.r.Hashes, sha256.Sum256(frame.Pix))
	return nil
}

func (w *recordingWriter) Close() error {
	w.r.mu.Lock()
	w.r.Closed++
	w.r.mu.Unlock()
	return os.WriteFile(w.path, []byte("recorded"), 0644)
}
