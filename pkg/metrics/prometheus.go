package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "upgraderisk"

var (
	// Risk, confidence and correlation scores live on 0..100.
	percentBuckets = prometheus.LinearBuckets(0, 10, 11)
	// Sentiment is -1..1; liquidity shift is a signed percent squeezed
	// into the same shape by the caller's units.
	signedBuckets = []float64{-50, -20, -10, -5, -1, -0.5, -0.2, 0, 0.2, 0.5, 1, 5, 10, 20, 50}
	// Per-step volatility is a small fraction.
	volBuckets = prometheus.ExponentialBuckets(0.001, 2, 10)
)

// signedKinds and volKinds pick the histogram a score kind lands in;
// everything else is treated as a 0..100 score.
var (
	signedKinds = map[string]bool{"sentiment": true, "sentiment_aggregate": true, "liquidity": true}
	volKinds    = map[string]bool{"volatility": true}
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	percent     *prometheus.HistogramVec
	signed      *prometheus.HistogramVec
	vol         *prometheus.HistogramVec
	lastScore   *prometheus.GaugeVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	hist := func(name, help string, buckets []float64, label string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: name, Help: help, Buckets: buckets,
		}, []string{label})
	}
	return &Recorder{
		percent: hist("score_value", "Produced 0-100 scores by kind", percentBuckets, "kind"),
		signed:  hist("signed_score_value", "Produced signed scores (sentiment, liquidity shift) by kind", signedBuckets, "kind"),
		vol:     hist("volatility_forecast", "First-step volatility forecasts", volBuckets, "kind"),
		lastScore: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_score", Help: "Last produced score by kind",
		}, []string{"kind"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "errors_total", Help: "Failed operations by kind",
		}, []string{"type"}),
		latency: hist("operation_duration_seconds", "Duration of scoring and ingest operations", prometheus.DefBuckets, "operation"),
	}
}

func (r *Recorder) RecordScore(kind string, value float64) {
	switch {
	case volKinds[kind]:
		r.vol.WithLabelValues(kind).Observe(value)
	case signedKinds[kind]:
		r.signed.WithLabelValues(kind).Observe(value)
	default:
		r.percent.WithLabelValues(kind).Observe(value)
	}
	r.lastScore.WithLabelValues(kind).Set(value)
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency takes seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
