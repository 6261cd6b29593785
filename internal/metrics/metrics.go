package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the survey service.
type Metrics struct {
	// Accepted survey submissions
	Submissions prometheus.Counter

	// Review status transitions by target status
	StatusUpdates *prometheus.CounterVec

	// HTTP request latencies by route pattern and status class
	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with all service metrics registered.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nda_survey_submissions_total",
			Help: "Total accepted survey submissions",
		}),

		StatusUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nda_survey_status_updates_total",
			Help: "Total review status transitions by target status",
		}, []string{"status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nda_survey_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}

// NewUnregistered creates a Metrics instance on a private registry, for
// tests that construct more than one server in a process.
func NewUnregistered() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Submissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "nda_survey_submissions_total",
			Help: "Total accepted survey submissions",
		}),
		StatusUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nda_survey_status_updates_total",
			Help: "Total review status transitions by target status",
		}, []string{"status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nda_survey_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),
	}
}
