package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClipsRenderedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highlight_clips_rendered_total",
		Help: "Total number of clip render jobs processed, by status",
	}, []string{"status"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "highlight_stage_duration_seconds",
		Help:    "Duration of render pipeline stages",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesCapturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "highlight_frames_captured_total",
		Help: "Total surface frames painted across all capture sessions",
	})

	CuesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "highlight_cues_generated_total",
		Help: "Total subtitle cues attached to rendered clips",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "highlight_active_capture_sessions",
		Help: "Number of capture sessions currently recording",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "highlight_retry_total",
		Help: "Total number of render retries",
	}, []string{"attempt"})
)
