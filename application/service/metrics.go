package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/helixml/taxseq/domain/run"
)

// Metrics records pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	BatchesTotal   *prometheus.CounterVec
	RecordsTotal   *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	RunsTotal      *prometheus.CounterVec
	RunsInProgress prometheus.Gauge
}

// NewMetrics registers the pipeline metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taxseq_batches_total",
			Help: "Total number of record batches requested, by outcome",
		}, []string{"outcome"}),
		RecordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taxseq_records_total",
			Help: "Total number of records seen, by outcome",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxseq_fetch_duration_seconds",
			Help:    "Duration of batch fetch requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taxseq_runs_total",
			Help: "Total number of pipeline runs, by final state",
		}, []string{"state"}),
		RunsInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "taxseq_runs_in_progress",
			Help: "Current number of running pipelines",
		}),
	}
}

func (m *Metrics) observeFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
	if err != nil {
		m.BatchesTotal.WithLabelValues("failed").Inc()
		return
	}
	m.BatchesTotal.WithLabelValues("fetched").Inc()
}

func (m *Metrics) observeRecords(kept, dropped, malformed int) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues("kept").Add(float64(kept))
	m.RecordsTotal.WithLabelValues("filtered_out").Add(float64(dropped))
	m.RecordsTotal.WithLabelValues("malformed").Add(float64(malformed))
}

func (m *Metrics) runStarted() {
	if m == nil {
		return
	}
	m.RunsInProgress.Inc()
}

func (m *Metrics) runFinished(state run.State) {
	if m == nil {
		return
	}
	m.RunsInProgress.Dec()
	m.RunsTotal.WithLabelValues(state.String()).Inc()
}
