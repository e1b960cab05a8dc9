package renderer

import (
	"image"
	"image/color"
	"math"
	"os"

	"github.com/ivlev/adforge/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultFontSize = 70
	captionRise     = 50
	captionAnchor   = 0.75
)

// TextOverlay draws the fading, rising scene caption.
type TextOverlay struct {
	face font.Face
}

// NewTextOverlay loads the font at fontPath. If it cannot be read or
// parsed the embedded Go Regular font is used, and failing that a fixed
// bitmap face. It never fails.
func NewTextOverlay(fontPath string, size float64, log *zap.Logger) *TextOverlay {
	log = logger.OrNop(log)
	if size <= 0 {
		size = DefaultFontSize
	}

	if fontPath != "" {
		face, err := loadFace(fontPath, size)
		if err == nil {
			return &TextOverlay{face: face}
		}
		log.Debug("font not available, using default", zap.String("path", fontPath), zap.Error(err))
	}

	face, err := newFace(goregular.TTF, size)
	if err != nil {
		log.Warn("embedded font unavailable, using bitmap face", zap.Error(err))
		return &TextOverlay{face: basicfont.Face7x13}
	}
	return &TextOverlay{face: face}
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newFace(data, size)
}

func newFace(data []byte, size float64) (font.Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// CaptionAlpha is the fade-in opacity at progress p: 255*min(2p, 1).
func CaptionAlpha(frame, total int) uint8 {
	p := captionProgress(frame, total)
	a := int(255 * math.Min(p*2, 1))
	return uint8(max(0, min(255, a)))
}

// CaptionTop is the y of the caption's top edge, rising 50px to 0.75*height.
func CaptionTop(frame, total, height int) int {
	p := captionProgress(frame, total)
	return int(float64(height)*captionAnchor - captionRise*(1-p))
}

func captionProgress(frame, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(frame) / float64(total)
}

// Draw renders text onto frame in place. Empty text draws nothing.
func (o *TextOverlay) Draw(frame *image.RGBA, text string, frameIndex, totalFrames int) {
	if text == "" {
		return
	}
	b := frame.Bounds()
	alpha := CaptionAlpha(frameIndex, totalFrames)
	if alpha == 0 {
		return
	}

	width := font.MeasureString(o.face, text).Round()
	x := b.Min.X + b.Dx()/2 - width/2
	y := b.Min.Y + CaptionTop(frameIndex, totalFrames, b.Dy())

	d := &font.Drawer{
		Dst:  frame,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: alpha}),
		Face: o.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + o.face.Metrics().Ascent},
	}
	d.DrawString(text)
}
