package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records cart/wishlist mutation and remote-mirror outcomes.
// Remote failures are swallowed by the stores, so the counters are the only
// operator-visible signal of degradation.
type StoreMetrics struct {
	mutations     *prometheus.CounterVec
	remoteResults *prometheus.CounterVec
	syncResults   *prometheus.CounterVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_mutations_total",
		Help: "Local store mutations applied.",
	}, []string{"store", "op"})
	remoteResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_remote_requests_total",
		Help: "Fire-and-forget remote mirror requests by outcome.",
	}, []string{"store", "op", "result"})
	syncResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_syncs_total",
		Help: "Batch sync attempts by outcome.",
	}, []string{"store", "result"})
	reg.MustRegister(mutations, remoteResults, syncResults)
	return &StoreMetrics{
		mutations:     mutations,
		remoteResults: remoteResults,
		syncResults:   syncResults,
	}
}

// IncMutation counts one applied local mutation.
func (m *StoreMetrics) IncMutation(store, op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(store), normalizeLabel(op)).Inc()
}

// IncRemote counts one remote mirror request outcome.
func (m *StoreMetrics) IncRemote(store, op string, err error) {
	if m == nil || m.remoteResults == nil {
		return
	}
	m.remoteResults.WithLabelValues(normalizeLabel(store), normalizeLabel(op), resultLabel(err)).Inc()
}

// IncSync counts one batch sync outcome.
func (m *StoreMetrics) IncSync(store string, err error) {
	if m == nil || m.syncResults == nil {
		return
	}
	m.syncResults.WithLabelValues(normalizeLabel(store), resultLabel(err)).Inc()
}

// HTTPMetrics records request durations for the local facade.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of facade requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// Observe records one request.
func (m *HTTPMetrics) Observe(method, path, status string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, " ", "_")
}
