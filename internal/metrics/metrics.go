package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorldsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernwelt_worlds_created_total",
		Help: "The total number of learning worlds created",
	})

	SectionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernwelt_sections_completed_total",
		Help: "The total number of sections marked completed",
	})

	RatingsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernwelt_ratings_submitted_total",
		Help: "The total number of world ratings submitted or updated",
	})

	TaskExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lernwelt_task_executions_total",
		Help: "Total number of background task executions",
	}, []string{"task_type", "status"})

	GeminiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lernwelt_gemini_request_duration_seconds",
		Help:    "Duration of Gemini design generation requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lernwelt_http_request_duration_seconds",
		Help:    "Duration of handled HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
