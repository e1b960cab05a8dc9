package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	badgeSize   = 256
	badgeMargin = 48
)

// Badge is a call-to-action QR code stamped in the bottom-right corner.
type Badge struct {
	img image.Image
}

// NewBadge encodes url as a QR code. An empty url returns nil.
func NewBadge(url string) (*Badge, error) {
	if url == "" {
		return nil, nil
	}
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode %q: %w", url, err)
	}
	return &Badge{img: q.Image(badgeSize)}, nil
}

// Rect is the badge position on a frame with the given bounds.
func (b *Badge) Rect(bounds image.Rectangle) image.Rectangle {
	size := b.img.Bounds().Size()
	min := image.Pt(bounds.Max.X-badgeMargin-size.X, bounds.Max.Y-badgeMargin-size.Y)
	return image.Rectangle{Min: min, Max: min.Add(size)}
}

// Draw stamps the badge onto frame with the caption's fade-in curve.
func (b *Badge) Draw(frame *image.RGBA, frameIndex, totalFrames int) {
	if b == nil {
		return
	}
	alpha := CaptionAlpha(frameIndex, totalFrames)
	if alpha == 0 {
		return
	}
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(frame, b.Rect(frame.Bounds()), b.img, b.img.Bounds().Min, mask, image.Point{}, draw.Over)
}
