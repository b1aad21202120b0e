package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "visitor_access"

var (
	verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Guest pass verifications by outcome and reason code.",
	}, []string{"outcome", "reason"})

	scanConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_conflicts_total",
		Help:      "Granted scans rejected because another write changed the pass first.",
	})

	completions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guest_completions_total",
		Help:      "Guests affected by administrative completion, by effect.",
	}, []string{"effect"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Outcome labels
const (
	OutcomeGranted   = "granted"
	OutcomeDenied    = "denied"
	OutcomeNotFound  = "not_found"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// ObserveVerification counts one verification attempt
func ObserveVerification(outcome, reason string) {
	verifications.WithLabelValues(outcome, reason).Inc()
}

// ObserveScanConflict counts one lost compare-and-swap on a pass
func ObserveScanConflict() {
	scanConflicts.Inc()
}

// ObserveCompletion counts guests checked out and passes completed
func ObserveCompletion(checkedOut, completed int64) {
	completions.WithLabelValues("checked_out").Add(float64(checkedOut))
	completions.WithLabelValues("completed").Add(float64(completed))
}

// ObserveRequest records the latency of one HTTP request
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
