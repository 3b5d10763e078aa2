// Package metrics exposes the disktest pipeline's Prometheus instrumentation: per-worker
// queue occupancy, aggregate throughput, and a counter of misaligned activations.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements pipeline.Recorder on top of a Prometheus registry.
type Metrics struct {
	registry              *prometheus.Registry
	queueLevel            *prometheus.GaugeVec
	bytesProducedTotal    prometheus.Counter
	misalignedActivations prometheus.Counter
}

// New creates a Metrics instance registered against a fresh, private registry (so
// repeated test runs in the same process never collide on metric names).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		queueLevel: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "disktest",
			Subsystem: "pipeline",
			Name:      "worker_queue_level",
			Help:      "Number of chunks a worker currently has queued ahead of the consumer.",
		}, []string{"worker_id"}),
		bytesProducedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "disktest",
			Subsystem: "pipeline",
			Name:      "bytes_produced_total",
			Help:      "Total bytes handed to the caller via successful pulls.",
		}),
		misalignedActivations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "disktest",
			Subsystem: "pipeline",
			Name:      "misaligned_activations_total",
			Help:      "Number of Activate calls whose offset required rounding down to a chunk boundary.",
		}),
	}
}

// ObserveQueueLevel implements pipeline.Recorder.
func (m *Metrics) ObserveQueueLevel(workerID uint32, level int64) {
	m.queueLevel.WithLabelValues(strconv.FormatUint(uint64(workerID), 10)).Set(float64(level))
}

// ObserveBytesProduced implements pipeline.Recorder.
func (m *Metrics) ObserveBytesProduced(n int) {
	m.bytesProducedTotal.Add(float64(n))
}

// IncMisalignedActivation implements pipeline.Recorder.
func (m *Metrics) IncMisalignedActivation() {
	m.misalignedActivations.Inc()
}

// Handler returns an http.Handler serving this instance's metrics in the Prometheus
// exposition format, suitable for mounting at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
