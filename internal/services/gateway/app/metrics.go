package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dashboardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gateway_dashboard_duration_seconds",
		Help:    "Time to assemble the dashboard payload.",
		Buckets: prometheus.DefBuckets,
	})

	upstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_upstream_failures_total",
		Help: "Failed upstream fetches by service.",
	}, []string{"upstream"})

	lastGoodServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_last_good_served_total",
		Help: "Dashboard sections served from the last-good cache.",
	}, []string{"section"})
)
