package authgate

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricSignupSuccess
	MetricSignupDuplicate
	MetricSessionCreated
	MetricSessionInvalidated
	MetricSessionLimitRejected
	MetricTokenRefreshed

	metricIDCount
)

type paddedCounter struct {
	value uint64
	_     [56]byte // avoid false sharing between adjacent counters
}

// Metrics holds atomic counters for authentication outcomes. All methods
// are safe on a nil receiver and become no-ops, so callers never need to
// guard instrumentation sites.
type Metrics struct {
	counters [metricIDCount]paddedCounter
}

// NewMetrics creates an enabled [Metrics] instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value returns the current value of a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, int(metricIDCount))
	if m == nil {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return out
}
