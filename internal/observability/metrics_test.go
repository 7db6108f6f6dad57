package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/steps", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/steps", "GET", 200, 30*time.Millisecond)
	m.RecordError("/job/offer/:id", "DELETE", "INVALID_STATE")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/steps|GET|200"])
	assert.Equal(t, int64(20), snap.AvgLatencyMillis["/steps|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/job/offer/:id|DELETE|INVALID_STATE"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
