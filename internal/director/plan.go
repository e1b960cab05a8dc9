package director

import (
	"math"
	"strings"
)

// Motion is a named camera transform applied across a scene.
type Motion string

const (
	MotionNone    Motion = "none"
	MotionZoomIn  Motion = "zoom_in"
	MotionZoomOut Motion = "zoom_out"
	MotionPanLeft Motion = "pan_left"
)

// Motions lists the vocabulary offered to the model, in prompt order.
var Motions = []Motion{MotionZoomIn, MotionZoomOut, MotionPanLeft, MotionNone}

// ParseMotion maps a name to a Motion; anything unknown is MotionNone.
func ParseMotion(name string) Motion {
	m := Motion(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Motions {
		if m == known {
			return m
		}
	}
	return MotionNone
}

// DefaultSceneDuration is used when a scene has no usable duration.
const DefaultSceneDuration = 1.5

// MaxScenes is the scene limit stated in the prompt. It is not enforced.
const MaxScenes = 10

// Plan is an ordered list of scenes describing the whole video.
type Plan struct {
	Scenes []Scene `json:"scenes" yaml:"scenes"`
}

// Scene is one segment of the video, tied to one source image.
type Scene struct {
	ImageIndex int     `json:"image_index" yaml:"image_index"`
	Duration   float64 `json:"duration" yaml:"duration"` // seconds
	Motion     Motion  `json:"motion" yaml:"motion"`
	Text       string  `json:"text" yaml:"text"`
}

// IsEmpty reports whether the plan has nothing to render.
func (p Plan) IsEmpty() bool {
	return len(p.Scenes) == 0
}

// TotalFrames sums FrameCount over all scenes.
func (p Plan) TotalFrames(fps int) int {
	total := 0
	for _, s := range p.Scenes {
		total += s.FrameCount(fps)
	}
	return total
}

// Normalize replaces unusable field values with their defaults.
func (p *Plan) Normalize() {
	for i := range p.Scenes {
		p.Scenes[i].Normalize()
	}
}

func (s *Scene) Normalize() {
	if s.ImageIndex < 0 {
		s.ImageIndex = 0
	}
	if s.Duration <= 0 || math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) {
		s.Duration = DefaultSceneDuration
	}
	s.Motion = ParseMotion(string(s.Motion))
}

// FrameCount is max(1, round(duration*fps)).
func (s Scene) FrameCount(fps int) int {
	n := int(math.Round(s.Duration * float64(fps)))
	if n < 1 {
		return 1
	}
	return n
}

// ResolveImageIndex clamps the scene's image index to [0, imageCount-1].
// Out-of-range indexes fall back to the last image.
func (s Scene) ResolveImageIndex(imageCount int) int {
	if imageCount <= 0 {
		return 0
	}
	idx := s.ImageIndex
	if idx < 0 {
		idx = 0
	}
	if idx > imageCount-1 {
		idx = imageCount - 1
	}
	return idx
}
