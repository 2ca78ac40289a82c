package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Receipt outcome labels.
const (
	StatusSuccess      = "success"
	StatusParseFailure = "parse_failure"
	StatusError        = "error"
)

// Metrics bundles receipt pipeline metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ReceiptsTotal   *prometheus.CounterVec
	AmountsSkipped  prometheus.Counter
	AnalyzeDuration prometheus.Histogram
	ReportsTotal    prometheus.Counter
}

// New constructs metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReceiptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "receipts_processed_total",
				Help: "Total receipts processed by outcome",
			},
			[]string{"status"},
		),
		AmountsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "receipt_amounts_skipped_total",
			Help: "Line items left out of totals because their amount was not numeric",
		}),
		AnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "receipt_analyze_duration_seconds",
			Help:    "Time spent waiting for the model to describe a receipt",
			Buckets: prometheus.DefBuckets,
		}),
		ReportsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "receipt_reports_total",
			Help: "Total aggregate reports written",
		}),
	}
	reg.MustRegister(
		m.ReceiptsTotal,
		m.AmountsSkipped,
		m.AnalyzeDuration,
		m.ReportsTotal,
	)
	return m
}

func (m *Metrics) ObserveReceipt(status string) {
	if m == nil {
		return
	}
	m.ReceiptsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveAnalyze(d time.Duration) {
	if m == nil {
		return
	}
	m.AnalyzeDuration.Observe(d.Seconds())
}

func (m *Metrics) AddSkippedAmounts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.AmountsSkipped.Add(float64(n))
}

func (m *Metrics) ObserveReport() {
	if m == nil {
		return
	}
	m.ReportsTotal.Inc()
}

// WriteTextfile dumps everything gathered by g in the node_exporter textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
