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
	// Ingestion metrics
	TradesProcessed  prometheus.Counter
	TokensRegistered prometheus.Counter
	EventsDropped    *prometheus.CounterVec
	EventBufferSize  prometheus.Gauge
	TrackedTokens    prometheus.Gauge
	TokensEvicted    prometheus.Counter
	TradesArchived   prometheus.Counter

	// Alerting metrics
	AlertsEmitted    *prometheus.CounterVec
	EvaluationsTotal *prometheus.CounterVec

	// Validation metrics
	ValidationSweeps      prometheus.Counter
	ValidationSweepTokens prometheus.Histogram
	EnrichmentFailures    prometheus.Counter
	EnrichmentLatency     prometheus.Histogram

	// Wallet metrics
	WalletRefreshes prometheus.Counter
	TrackedWallets  prometheus.Gauge
	KnownWallets    prometheus.Gauge

	// Health metrics
	LastTradeProcessed  prometheus.Gauge
	LastValidationSweep prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pumpfun_motion"
	}

	return &Metrics{
		TradesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_processed_total",
			Help:      "Total number of trade events processed",
		}),
		TokensRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "tokens_registered_total",
			Help:      "Total number of token launches registered",
		}),
		EventsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped by reason",
		}, []string{"reason"}),
		EventBufferSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "event_buffer_size",
			Help:      "Current number of events waiting in the intake buffer",
		}),
		TrackedTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "tracked_tokens",
			Help:      "Number of tokens with live window state",
		}),
		TokensEvicted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "tokens_evicted_total",
			Help:      "Total number of inactive tokens evicted from the registry",
		}),
		TradesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "trades_archived_total",
			Help:      "Total number of trades written to the archive store",
		}),

		AlertsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "alerts_emitted_total",
			Help:      "Total number of alerts emitted by tier",
		}, []string{"tier"}),
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "evaluations_total",
			Help:      "Total number of tier evaluations by tier and outcome",
		}, []string{"tier", "outcome"}),

		ValidationSweeps: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "sweeps_total",
			Help:      "Total number of validation sweeps completed",
		}),
		ValidationSweepTokens: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "sweep_tokens",
			Help:      "Number of tokens examined per validation sweep",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		EnrichmentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "enrichment_failures_total",
			Help:      "Total number of failed enrichment fetches",
		}),
		EnrichmentLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "enrichment_latency_seconds",
			Help:      "Enrichment fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		WalletRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallets",
			Name:      "refreshes_total",
			Help:      "Total number of wallet ledger refreshes",
		}),
		TrackedWallets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wallets",
			Name:      "tracked_wallets",
			Help:      "Number of wallets in the ledger snapshot",
		}),
		KnownWallets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wallets",
			Name:      "known_profitable_wallets",
			Help:      "Number of wallets currently classified as known profitable",
		}),

		LastTradeProcessed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_trade_processed_timestamp",
			Help:      "Unix timestamp of the last processed trade",
		}),
		LastValidationSweep: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_validation_sweep_timestamp",
			Help:      "Unix timestamp of the last completed validation sweep",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance. Components fall back to
// it when no Metrics is injected.
var DefaultMetrics = NewMetrics("")
