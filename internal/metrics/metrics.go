package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boundary_cache_lookups_total",
		Help: "Boundary cache lookups by result (hit, miss, expired, corrupt)",
	}, []string{"result"})
	CacheWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boundary_cache_writes_total",
		Help: "Boundary cache writes by result",
	}, []string{"result"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boundary_provider_requests_total",
		Help: "Geocoding provider requests by operation and outcome",
	}, []string{"provider", "operation", "outcome"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boundary_provider_duration_ms",
		Help:    "Geocoding provider call duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	}, []string{"provider", "operation"})
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boundary_resolutions_total",
		Help: "Boundary resolutions by resolved level and outcome",
	}, []string{"level", "outcome"})
)

func init() {
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(CacheWritesTotal)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderDurationMs)
	prometheus.MustRegister(ResolutionsTotal)
}

// Handler возвращает обработчик /metrics над реестром по умолчанию
func Handler() http.Handler { return promhttp.Handler() }
