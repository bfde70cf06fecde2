package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of one loader.
type Metrics struct {
	SourceFetches  *prometheus.CounterVec
	DecodedRecords *prometheus.GaugeVec
	LoadDuration   prometheus.Histogram
	PageRenders    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which keeps tests independent of the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetfolio_source_fetch_total",
			Help: "Sheet fetch attempts by source and outcome.",
		}, []string{"source", "status"}),
		DecodedRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sheetfolio_decoded_records",
			Help: "Records that survived decoding in the last load, by source.",
		}, []string{"source"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sheetfolio_load_duration_seconds",
			Help:    "Duration of a full four-sheet load.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheetfolio_page_renders_total",
			Help: "Page renders by outcome.",
		}, []string{"status"}),
	}
	if reg != nil {
		reg.MustRegister(m.SourceFetches, m.DecodedRecords, m.LoadDuration, m.PageRenders)
	}
	return m
}

func (m *Metrics) ObserveSource(source, status string, records int) {
	if m == nil {
		return
	}
	m.SourceFetches.WithLabelValues(source, status).Inc()
	m.DecodedRecords.WithLabelValues(source).Set(float64(records))
}

func (m *Metrics) ObserveLoad(seconds float64) {
	if m == nil {
		return
	}
	m.LoadDuration.Observe(seconds)
}

func (m *Metrics) ObserveRender(status string) {
	if m == nil {
		return
	}
	m.PageRenders.WithLabelValues(status).Inc()
}
