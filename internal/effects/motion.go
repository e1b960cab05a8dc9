package effects

import (
	"image"
	"image/draw"
	"math"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/director"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const (
	zoomRange = 0.15
	panScale  = 1.1
)

// Window is the crop of a scaled fitted image that becomes one frame.
type Window struct {
	Scale            float64
	ScaledW, ScaledH int
	X, Y             int // top-left of the crop inside the scaled image
}

// Rect is the crop rectangle in scaled-image coordinates.
func (w Window) Rect(canvas config.Canvas) image.Rectangle {
	return image.Rect(w.X, w.Y, w.X+canvas.Width, w.Y+canvas.Height)
}

// IsIdentity reports whether the window maps the fitted image onto the
// canvas unchanged.
func (w Window) IsIdentity() bool {
	return w.Scale == 1 && w.X == 0 && w.Y == 0
}

// Progress is frame/(total-1), so the last frame reaches the end value.
func Progress(frame, total int) float64 {
	if total <= 1 {
		return 0
	}
	t := float64(frame) / float64(total-1)
	return math.Max(0, math.Min(1, t))
}

// ScaleAt returns the zoom factor of motion at the given frame.
func ScaleAt(motion director.Motion, frame, total int) float64 {
	t := Progress(frame, total)
	switch motion {
	case director.MotionZoomIn:
		return 1 + zoomRange*t
	case director.MotionZoomOut:
		return 1 + zoomRange - zoomRange*t
	case director.MotionPanLeft:
		return panScale
	default:
		return 1
	}
}

// ComputeWindow computes the crop for one frame. The fitted image is
// assumed to be canvas-sized. Offsets are clamped so the crop never leaves
// the scaled image.
func ComputeWindow(motion director.Motion, frame, total int, canvas config.Canvas) Window {
	scale := ScaleAt(motion, frame, total)
	w := Window{
		Scale:   scale,
		ScaledW: max(canvas.Width, int(float64(canvas.Width)*scale)),
		ScaledH: max(canvas.Height, int(float64(canvas.Height)*scale)),
	}

	maxX := w.ScaledW - canvas.Width
	maxY := w.ScaledH - canvas.Height
	w.X = maxX / 2
	w.Y = maxY / 2
	if motion == director.MotionPanLeft {
		w.X = int(math.Round(float64(maxX) * Progress(frame, total)))
	}
	w.X = clamp(w.X, 0, maxX)
	w.Y = clamp(w.Y, 0, maxY)
	return w
}

// ApplyMotion renders frame `frame` of a scene into dst, which must be
// canvas-sized. fitted is never modified.
func ApplyMotion(dst *image.RGBA, fitted image.Image, frame, total int, motion director.Motion, canvas config.Canvas) Window {
	w := ComputeWindow(motion, frame, total, canvas)
	bounds := dst.Bounds()
	src := fitted.Bounds()

	if w.IsIdentity() {
		draw.Draw(dst, bounds, fitted, src.Min, draw.Src)
		return w
	}

	draw.Draw(dst, bounds, image.Black, image.Point{}, draw.Src)

	// Source to destination: scale the fitted image by the per-axis factor
	// that yields ScaledW x ScaledH, then shift by the crop offset.
	sx := float64(w.ScaledW) / float64(src.Dx())
	sy := float64(w.ScaledH) / float64(src.Dy())
	s2d := f64.Aff3{
		sx, 0, float64(bounds.Min.X-w.X) - sx*float64(src.Min.X),
		0, sy, float64(bounds.Min.Y-w.Y) - sy*float64(src.Min.Y),
	}
	xdraw.CatmullRom.Transform(dst, s2d, fitted, src, xdraw.Src, nil)
	return w
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
