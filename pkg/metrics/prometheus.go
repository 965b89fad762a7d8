package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	entriesTotal   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	equity         *prometheus.GaugeVec
	drawdown       prometheus.Gauge
	sampleDuration *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		entriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_entries_total",
				Help: "Total number of telemetry entries recorded per category",
			},
			[]string{"category"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradepulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		equity: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradepulse_account_equity",
				Help: "Last sampled equity per account",
			},
			[]string{"account"},
		),
		drawdown: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradepulse_drawdown",
				Help: "Last sampled drawdown",
			},
		),
		sampleDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradepulse_sample_duration_seconds",
				Help:    "Duration of snapshot sampling in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"category"},
		),
	}
}

// RecordEntry records one written entry for a category.
func (r *Recorder) RecordEntry(category string) {
	r.entriesTotal.WithLabelValues(category).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordEquity records the last sampled equity for an account.
func (r *Recorder) RecordEquity(account string, equity float64) {
	r.equity.WithLabelValues(account).Set(equity)
}

// RecordDrawdown records the last sampled drawdown.
func (r *Recorder) RecordDrawdown(dd float64) {
	r.drawdown.Set(dd)
}

// RecordSampleDuration records snapshot sampling latency in seconds.
func (r *Recorder) RecordSampleDuration(category string, seconds float64) {
	r.sampleDuration.WithLabelValues(category).Observe(seconds)
}
