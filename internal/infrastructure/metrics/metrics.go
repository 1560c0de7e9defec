package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockledger/internal/domain"
)

const namespace = "stockledger"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LedgerMutations     *prometheus.CounterVec
	StockEventsTotal    *prometheus.CounterVec
	ReportCacheTotal    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		LedgerMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_mutations_total",
				Help:      "Ledger mutations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		StockEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stock_events_total",
				Help:      "Stock change notifications by sink and result",
			},
			[]string{"sink", "result"},
		),
		ReportCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_total",
				Help:      "Report cache lookups by report and result",
			},
			[]string{"report", "result"},
		),
	}
}

func (m *Metrics) RecordMutation(op domain.StockOperation, outcome string) {
	m.LedgerMutations.WithLabelValues(string(op), outcome).Inc()
}

func (m *Metrics) RecordStockEvent(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StockEventsTotal.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) RecordCacheLookup(report string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ReportCacheTotal.WithLabelValues(report, result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
