package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	statusEmpty   = "error_empty_response"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adforge_ai_requests_total",
			Help: "Total number of scene plan requests sent to the model.",
		},
		[]string{"model", "status"},
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adforge_ai_request_duration_seconds",
			Help:    "Histogram of model request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
)

func observe(model, status string, d time.Duration) {
	aiRequestsTotal.WithLabelValues(model, status).Inc()
	if status == statusSuccess {
		aiRequestDuration.WithLabelValues(model).Observe(d.Seconds())
	}
}
