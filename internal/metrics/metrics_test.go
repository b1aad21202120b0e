package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveVerification(t *testing.T) {
	before := testutil.ToFloat64(verifications.WithLabelValues(OutcomeDenied, "SCAN_LIMIT_EXCEEDED"))
	ObserveVerification(OutcomeDenied, "SCAN_LIMIT_EXCEEDED")
	after := testutil.ToFloat64(verifications.WithLabelValues(OutcomeDenied, "SCAN_LIMIT_EXCEEDED"))

	assert.Equal(t, before+1, after)
}

func TestObserveCompletion(t *testing.T) {
	before := testutil.ToFloat64(completions.WithLabelValues("checked_out"))
	ObserveCompletion(2, 3)

	assert.Equal(t, before+2, testutil.ToFloat64(completions.WithLabelValues("checked_out")))
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("POST", "/api/v1/guest-passes/verify", 200, 15*time.Millisecond)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(requestDuration), 1)
}
