package kafka

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "upgraderisk"

// clientMetrics covers both directions of the client. It is created once
// per process on first use.
type clientMetrics struct {
	published  *prometheus.CounterVec
	pubBytes   *prometheus.CounterVec
	pubLatency *prometheus.HistogramVec

	queueDepth    *prometheus.GaugeVec
	queueFullness *prometheus.GaugeVec
	handleLatency *prometheus.HistogramVec
	dlqTotal      *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsReg  prometheus.Registerer = prometheus.DefaultRegisterer
	km          *clientMetrics
)

// SetMetricsRegisterer must be called before the first producer or consumer
// is built. Tests use it to isolate registries.
func SetMetricsRegisterer(reg prometheus.Registerer) {
	if reg != nil {
		metricsReg = reg
	}
}

func metrics() *clientMetrics {
	metricsOnce.Do(func() {
		f := promauto.With(metricsReg)
		km = &clientMetrics{
			published: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "kafka_producer", Name: "messages_total",
				Help: "Messages written, by topic and result.",
			}, []string{"topic", "result"}),
			pubBytes: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "kafka_producer", Name: "bytes_total",
				Help: "Payload bytes written.",
			}, []string{"topic"}),
			pubLatency: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "kafka_producer", Name: "publish_seconds",
				Help: "WriteMessages latency.", Buckets: prometheus.DefBuckets,
			}, []string{"topic"}),
			queueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: metricsNamespace, Subsystem: "kafka_consumer", Name: "queue_depth",
				Help: "Messages waiting for a worker.",
			}, []string{"topic"}),
			queueFullness: f.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: metricsNamespace, Subsystem: "kafka_consumer", Name: "queue_fullness",
				Help: "Worker queue utilization (len/cap).",
			}, []string{"topic"}),
			handleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metricsNamespace, Subsystem: "kafka_consumer", Name: "handle_seconds",
				Help: "Handling time per message including retries.",
			}, []string{"topic"}),
			dlqTotal: f.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace, Subsystem: "kafka_consumer", Name: "dead_letters_total",
				Help: "Messages forwarded to the dead letter topic.",
			}, []string{"topic"}),
		}
	})
	return km
}
