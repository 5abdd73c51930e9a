package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnitemplates_http_requests_total",
			Help: "HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omnitemplates_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	Payments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnitemplates_payments_total",
			Help: "Payment verifications by provider and result.",
		},
		[]string{"provider", "result"},
	)

	CreditEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnitemplates_credit_entries_total",
			Help: "Credit ledger entries written, by type.",
		},
		[]string{"type"},
	)

	PagesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnitemplates_pages_created_total",
			Help: "Pages created, by how they were paid.",
		},
		[]string{"payment"},
	)

	CleanupPagesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omnitemplates_cleanup_pages_deleted_total",
			Help: "Expired pages removed by the cleanup job.",
		},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omnitemplates_rate_limited_total",
			Help: "Requests rejected by the in-memory rate limiter.",
		},
		[]string{"limiter"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		Payments,
		CreditEntries,
		PagesCreated,
		CleanupPagesDeleted,
		RateLimited,
	)
}
