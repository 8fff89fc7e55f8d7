package weather

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_upstream_requests_total",
		Help: "OpenWeather fetches by outcome.",
	}, []string{"outcome"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_cache_lookups_total",
		Help: "Forecast cache lookups by result.",
	}, []string{"result"})
)
