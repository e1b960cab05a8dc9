package renderer

import (
	"image"
	"image/draw"

	"github.com/ivlev/adforge/internal/config"

	xdraw "golang.org/x/image/draw"
)

// FitRect returns where an image of size (w, h) lands on the canvas when
// scaled to fit without cropping and centered.
func FitRect(w, h int, canvas config.Canvas) image.Rectangle {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	imgRatio := float64(w) / float64(h)
	frameRatio := float64(canvas.Width) / float64(canvas.Height)

	var newW, newH int
	if imgRatio > frameRatio {
		newW = canvas.Width
		newH = int(float64(canvas.Width) / imgRatio)
	} else {
		newH = canvas.Height
		newW = int(float64(canvas.Height) * imgRatio)
	}
	newW = max(1, newW)
	newH = max(1, newH)

	x := (canvas.Width - newW) / 2
	y := (canvas.Height - newH) / 2
	return image.Rect(x, y, x+newW, y+newH)
}

// Fit letterboxes img onto a black canvas-sized bitmap.
func Fit(img image.Image, canvas config.Canvas) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, canvas.Width, canvas.Height))
	draw.Draw(frame, frame.Bounds(), image.Black, image.Point{}, draw.Src)

	b := img.Bounds()
	dr := FitRect(b.Dx(), b.Dy(), canvas)
	if dr.Empty() {
		return frame
	}
	if dr.Dx() == b.Dx() && dr.Dy() == b.Dy() {
		draw.Draw(frame, dr, img, b.Min, draw.Over)
		return frame
	}
	xdraw.CatmullRom.Scale(frame, dr, img, b, xdraw.Over, nil)
	return frame
}
