// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scanner metrics
	ScansTotal      *prometheus.CounterVec
	ScanDuration    *prometheus.HistogramVec
	CandidatesFound prometheus.Counter

	// Whale tracker metrics
	WhaleScansTotal *prometheus.CounterVec
	SignalsFound    prometheus.Counter

	// Trading metrics
	TradesExecuted  *prometheus.CounterVec
	CopyTradesTotal *prometheus.CounterVec

	// Source metrics
	SourceErrors *prometheus.CounterVec

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "memex_agent"
	}

	return &Metrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "scans_total",
			Help:      "Total number of market scans by status",
		}, []string{"status"}),
		ScanDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "scan_duration_seconds",
			Help:      "Market scan duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		CandidatesFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "candidates_found_total",
			Help:      "Total number of candidates surfaced by scans",
		}),
		WhaleScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "whale",
			Name:      "scans_total",
			Help:      "Total number of watchlist scans by status",
		}, []string{"status"}),
		SignalsFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "whale",
			Name:      "signals_found_total",
			Help:      "Total number of qualifying whale signals",
		}),
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_executed_total",
			Help:      "Total number of executed trades by type",
		}, []string{"type"}),
		CopyTradesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "copy_trades_total",
			Help:      "Total number of copy-trade attempts by outcome",
		}, []string{"outcome"}),
		SourceErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sources",
			Name:      "errors_total",
			Help:      "Total number of external source errors",
		}, []string{"source"}),
		LastSuccessfulScan: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful market scan",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScan records one market scan.
func RecordScan(status string, durationSeconds float64) {
	DefaultMetrics.ScansTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanDuration.WithLabelValues(status).Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulScan.SetToCurrentTime()
	}
}

// RecordCandidates adds to the surfaced-candidates counter.
func RecordCandidates(n int) {
	DefaultMetrics.CandidatesFound.Add(float64(n))
}

// RecordWhaleScan records one watchlist scan.
func RecordWhaleScan(status string) {
	DefaultMetrics.WhaleScansTotal.WithLabelValues(status).Inc()
}

// RecordSignals adds to the qualifying-signals counter.
func RecordSignals(n int) {
	DefaultMetrics.SignalsFound.Add(float64(n))
}

// RecordTrade records one executed trade.
func RecordTrade(tradeType string) {
	DefaultMetrics.TradesExecuted.WithLabelValues(tradeType).Inc()
}

// RecordCopyTrade records one copy-trade attempt.
func RecordCopyTrade(outcome string) {
	DefaultMetrics.CopyTradesTotal.WithLabelValues(outcome).Inc()
}

// RecordSourceError records one external source failure.
func RecordSourceError(source string) {
	DefaultMetrics.SourceErrors.WithLabelValues(source).Inc()
}

// RecordUptime adds elapsed seconds to the uptime counter.
func RecordUptime(seconds float64) {
	DefaultMetrics.UptimeSeconds.Add(seconds)
}
