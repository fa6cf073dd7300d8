package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	adminRequestsTotal   *prometheus.CounterVec
	adminLatencySeconds  *prometheus.HistogramVec
	adminErrorsTotal     *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	submissionScore      *prometheus.HistogramVec
	adminTransitionTotal *prometheus.CounterVec
	eventsPublishedTotal *prometheus.CounterVec
	eventClientsActive   prometheus.Gauge
	imageRejectedTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "round_submissions_total",
			Help: "Round submissions persisted, by round and status.",
		}, []string{"round", "status"})

		submissionScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "round_submission_score",
			Help:    "Distribution of total scores of persisted submissions.",
			Buckets: []float64{0, 10, 25, 50, 75, 100, 150, 200, 300},
		}, []string{"round"})

		adminTransitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_transitions_total",
			Help: "Administrative competition transitions, by action and outcome.",
		}, []string{"action", "outcome"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "competition_events_published_total",
			Help: "Competition events published, by type and transport.",
		}, []string{"type", "transport"})

		eventClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "competition_event_clients_active",
			Help: "Number of websocket clients streaming competition events.",
		})

		imageRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "question_image_rejected_total",
			Help: "Question image uploads rejected, by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			submissionsTotal,
			submissionScore,
			adminTransitionTotal,
			eventsPublishedTotal,
			eventClientsActive,
			imageRejectedTotal,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// Submissions exposes the counter of persisted round submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// SubmissionScores exposes the histogram of submission scores.
func SubmissionScores() *prometheus.HistogramVec {
	RegisterMetrics()
	return submissionScore
}

// Transitions exposes the counter of administrative transitions.
func Transitions() *prometheus.CounterVec {
	RegisterMetrics()
	return adminTransitionTotal
}

// EventsPublished exposes the counter of published competition events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// EventClientsActive exposes the gauge of connected event stream clients.
func EventClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return eventClientsActive
}

// ImageRejected exposes the counter of rejected question image uploads.
func ImageRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return imageRejectedTotal
}
