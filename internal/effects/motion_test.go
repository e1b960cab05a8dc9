package effects

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/director"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCanvases = []config.Canvas{config.Portrait, config.Landscape, {Width: 40, Height: 60}}

func TestScaleIsMonotonic(t *testing.T) {
	const total = 60
	for f := 1; f < total; f++ {
		assert.Greater(t, ScaleAt(director.MotionZoomIn, f, total), ScaleAt(director.MotionZoomIn, f-1, total))
		assert.Less(t, ScaleAt(director.MotionZoomOut, f, total), ScaleAt(director.MotionZoomOut, f-1, total))
	}

	assert.InDelta(t, 1.0, ScaleAt(director.MotionZoomIn, 0, total), 1e-9)
	assert.InDelta(t, 1.15, ScaleAt(director.MotionZoomIn, total-1, total), 1e-9)
	assert.InDelta(t, 1.15, ScaleAt(director.MotionZoomOut, 0, total), 1e-9)
	assert.InDelta(t, 1.0, ScaleAt(director.MotionZoomOut, total-1, total), 1e-9)
	assert.InDelta(t, 1.1, ScaleAt(director.MotionPanLeft, 7, total), 1e-9)
	assert.InDelta(t, 1.0, ScaleAt(director.MotionNone, 7, total), 1e-9)
}

func TestWindowStaysInsideScaledImage(t *testing.T) {
	for _, canvas := range testCanvases {
		for _, motion := range director.Motions {
			for _, total := range []int{1, 2, 45, 60} {
				for f := 0; f < total; f++ {
					w := ComputeWindow(motion, f, total, canvas)
					r := w.Rect(canvas)
					scaled := image.Rect(0, 0, w.ScaledW, w.ScaledH)
					require.True(t, r.In(scaled), "motion=%s frame=%d/%d canvas=%v window=%+v", motion, f, total, canvas, w)
				}
			}
		}
	}
}

func TestZoomOutFirstFrameFits(t *testing.T) {
	for _, canvas := range testCanvases {
		w := ComputeWindow(director.MotionZoomOut, 0, 30, canvas)
		assert.GreaterOrEqual(t, w.ScaledW, canvas.Width)
		assert.GreaterOrEqual(t, w.ScaledH, canvas.Height)
		assert.Equal(t, (w.ScaledW-canvas.Width)/2, w.X)
	}
}

func TestPanLeftSlidesAcross(t *testing.T) {
	canvas := config.Landscape
	const total = 30

	first := ComputeWindow(director.MotionPanLeft, 0, total, canvas)
	last := ComputeWindow(director.MotionPanLeft, total-1, total, canvas)

	assert.Equal(t, 0, first.X)
	assert.Equal(t, last.ScaledW-canvas.Width, last.X)
	assert.Equal(t, (first.ScaledH-canvas.Height)/2, first.Y)

	prev := -1
	for f := 0; f < total; f++ {
		x := ComputeWindow(director.MotionPanLeft, f, total, canvas).X
		assert.GreaterOrEqual(t, x, prev)
		prev = x
	}
}

func TestNoneIsIdentity(t *testing.T) {
	for f := 0; f < 10; f++ {
		w := ComputeWindow(director.MotionNone, f, 10, config.Portrait)
		assert.True(t, w.IsIdentity())
	}
}

func gradient(canvas config.Canvas) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	for y := 0; y < canvas.Height; y++ {
		for x := 0; x < canvas.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 255 / canvas.Width), uint8(y * 255 / canvas.Height), 128, 255})
		}
	}
	return img
}

func TestApplyMotionNoneCopiesFitted(t *testing.T) {
	canvas := config.Canvas{Width: 40, Height: 60}
	fitted := gradient(canvas)
	before := append([]uint8(nil), fitted.Pix...)

	for f := 0; f < 5; f++ {
		dst := image.NewRGBA(fitted.Bounds())
		ApplyMotion(dst, fitted, f, 5, director.MotionNone, canvas)
		assert.Equal(t, fitted.Pix, dst.Pix)
	}
	assert.Equal(t, before, fitted.Pix, "fitted image must not be modified")
}

func TestApplyMotionZoomChangesFrames(t *testing.T) {
	canvas := config.Canvas{Width: 40, Height: 60}
	fitted := gradient(canvas)

	first := image.NewRGBA(fitted.Bounds())
	last := image.NewRGBA(fitted.Bounds())
	ApplyMotion(first, fitted, 0, 30, director.MotionZoomIn, canvas)
	ApplyMotion(last, fitted, 29, 30, director.MotionZoomIn, canvas)

	assert.Equal(t, fitted.Pix, first.Pix, "zoom_in starts at scale 1.0")
	assert.NotEqual(t, first.Pix, last.Pix)

	// Zooming in pulls the top-left corner towards the center color.
	c0 := first.RGBAAt(0, 0)
	c1 := last.RGBAAt(0, 0)
	assert.Greater(t, c1.R, c0.R)
	assert.Greater(t, c1.G, c0.G)
	// Every pixel is covered: alpha stays opaque.
	for i := 3; i < len(last.Pix); i += 4 {
		require.Equal(t, uint8(255), last.Pix[i])
	}
}
