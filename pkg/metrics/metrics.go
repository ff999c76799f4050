package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Price ingestion metrics
	PricePointsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_price_points_ingested_total",
			Help: "Price points written to the history store",
		},
		[]string{"job"}, // daily_update, backfill, manual
	)

	PriceIngestionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_price_ingestion_failures_total",
			Help: "Per-asset ingestion failures that were logged and skipped",
		},
		[]string{"job"},
	)

	PriceJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_price_job_duration_seconds",
			Help:    "End-to-end duration of price ingestion jobs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
		[]string{"job"},
	)

	// Valuation metrics
	RecalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_portfolio_recalculations_total",
			Help: "Portfolio metric recalculations",
		},
		[]string{"status"}, // success, failure
	)

	RecalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_portfolio_recalculation_duration_seconds",
			Help:    "Duration of portfolio metric recalculations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// System metrics
	DatabaseConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "folio_database_connections",
			Help: "Number of database connections",
		},
		[]string{"state"}, // open, idle, in_use
	)
)
