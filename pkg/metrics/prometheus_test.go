package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Counters(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordTransition("overview", "loading")
	r.RecordTransition("overview", "loading")
	r.RecordFetchError("topics", "http")
	r.RecordStale("topics")
	r.RecordAuditWritten("kafka", 5)
	r.RecordError("audit_write")
	r.RecordFetchLatency("labels", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitions.WithLabelValues("overview", "loading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchErrors.WithLabelValues("topics", "http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stale.WithLabelValues("topics")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.auditWritten.WithLabelValues("kafka")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("audit_write")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.fetchLatency))
}
