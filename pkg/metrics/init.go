package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "appviewer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appviewer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
}

func (r *Registry) initRouteMetrics() {
	r.RouteQueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "appviewer_route_queries_total",
			Help: "Total number of route queries executed",
		},
		[]string{"mode", "status"},
	)

	r.RouteQueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appviewer_route_query_duration_seconds",
			Help:    "Route query duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"mode"},
	)

	r.RoutePathsFound = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appviewer_route_paths_found",
			Help:    "Number of routes returned per query",
			Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 1000, 10000},
		},
		[]string{"mode"},
	)

	r.RouteExpansions = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "appviewer_route_expansions",
			Help:    "Number of applications expanded per query",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		},
		[]string{"mode"},
	)
}

func (r *Registry) initCatalogMetrics() {
	r.CatalogApplications = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "appviewer_catalog_applications",
			Help: "Number of applications in the loaded catalog",
		},
	)

	r.CatalogLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "appviewer_catalog_links",
			Help: "Number of communication links in the loaded catalog",
		},
	)

	r.CatalogReloadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "appviewer_catalog_reloads_total",
			Help: "Total number of catalog loads",
		},
		[]string{"status"},
	)
}
