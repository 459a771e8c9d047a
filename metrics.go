package casinocms

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casinocms_conversions_total",
			Help: "Template conversions by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	conversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casinocms_conversion_duration_seconds",
			Help:    "Time spent converting an uploaded template",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"category"},
	)

	boundExpressions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casinocms_bound_expressions",
			Help:    "Data-bound expressions produced per conversion",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casinocms_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)
)
