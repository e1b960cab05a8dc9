package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scenesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adforge_scenes_rendered_total",
		Help: "Total number of scenes rendered.",
	})
	framesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adforge_frames_rendered_total",
		Help: "Total number of frames written to the encoder.",
	})
	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "adforge_render_duration_seconds",
		Help:    "Histogram of full video render durations.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adforge_generations_total",
			Help: "Total number of pipeline runs by outcome.",
		},
		[]string{"status"},
	)
)
