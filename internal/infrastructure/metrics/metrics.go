package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Contribution metrics
	ContributionsCreated   prometheus.Counter
	ContributionsConfirmed prometheus.Counter
	ContributionsDenied    prometheus.Counter
	ContributionsDeleted   prometheus.Counter

	// Transfer metrics
	TransfersBooked prometheus.Counter
	TransferAmount  prometheus.Histogram
	TransferErrors  *prometheus.CounterVec

	// Transfer link metrics
	LinksCreated  prometheus.Counter
	LinksRedeemed prometheus.Counter

	// Serialization metrics
	GateWaitDuration prometheus.Histogram
	MutationDuration prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ContributionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_contributions_created_total",
			Help: "Total number of contributions submitted",
		}),
		ContributionsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_contributions_confirmed_total",
			Help: "Total number of contributions confirmed",
		}),
		ContributionsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_contributions_denied_total",
			Help: "Total number of contributions denied",
		}),
		ContributionsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_contributions_deleted_total",
			Help: "Total number of contributions deleted",
		}),

		TransfersBooked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_transfers_booked_total",
			Help: "Total number of transfers booked",
		}),
		TransferAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commledger_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commledger_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		LinksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_links_created_total",
			Help: "Total number of transfer links created",
		}),
		LinksRedeemed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_links_redeemed_total",
			Help: "Total number of transfer links redeemed",
		}),

		GateWaitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commledger_gate_wait_seconds",
			Help:    "Time spent waiting for the mutation gate",
			Buckets: prometheus.DefBuckets,
		}),
		MutationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commledger_mutation_duration_seconds",
			Help:    "Duration of ledger mutations including gate wait",
			Buckets: prometheus.DefBuckets,
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "commledger_outbox_errors_total",
			Help: "Total outbox publish errors",
		}),

		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
