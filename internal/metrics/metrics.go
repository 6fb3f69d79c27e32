package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discovery",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discovery",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "route"})

	CatalogRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discovery",
		Name:      "catalog_requests_total",
		Help:      "Total upstream TMDB requests by endpoint group and result.",
	}, []string{"endpoint", "result"})

	CatalogRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discovery",
		Name:      "catalog_request_duration_seconds",
		Help:      "Upstream TMDB request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	CatalogBreakerOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "discovery",
		Name:      "catalog_breaker_open",
		Help:      "Whether the TMDB circuit breaker is open (1) or not (0).",
	})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "discovery",
		Name:      "catalog_cache_hits_total",
		Help:      "Total number of catalog cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "discovery",
		Name:      "catalog_cache_misses_total",
		Help:      "Total number of catalog cache misses.",
	})

	StrategyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discovery",
		Name:      "strategy_results_total",
		Help:      "Candidate gathering strategy outcomes by strategy and status.",
	}, []string{"strategy", "status"})

	RerankOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discovery",
		Name:      "rerank_outcomes_total",
		Help:      "Final ordering source of recommendation responses (ai or fallback).",
	}, []string{"outcome"})

	LLMRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discovery",
		Name:      "llm_request_duration_seconds",
		Help:      "Chat completion duration in seconds by call site.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"call"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		CatalogRequestsTotal,
		CatalogRequestDuration,
		CatalogBreakerOpen,
		CacheHitsTotal,
		CacheMissesTotal,
		StrategyResultsTotal,
		RerankOutcomesTotal,
		LLMRequestDuration,
	)
}
