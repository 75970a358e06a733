package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveRequest adapts RecordHTTPRequest to the request logging middleware.
// Only the route template is used as path label, never the raw URL.
func (r *Registry) ObserveRequest(route func(*http.Request) string) func(*http.Request, int, time.Duration) {
	return func(req *http.Request, status int, duration time.Duration) {
		r.RecordHTTPRequest(req.Method, route(req), status, duration)
	}
}

// RecordRouteQuery records a route query. status is "success" or an error class.
func (r *Registry) RecordRouteQuery(mode, status string, duration time.Duration, paths, expansions int) {
	r.RouteQueriesTotal.WithLabelValues(mode, status).Inc()
	r.RouteQueryDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if status == "success" {
		r.RoutePathsFound.WithLabelValues(mode).Observe(float64(paths))
		r.RouteExpansions.WithLabelValues(mode).Observe(float64(expansions))
	}
}

// RecordCatalogLoad records a catalog (re)load and the resulting graph size
func (r *Registry) RecordCatalogLoad(applications, links int, err error) {
	if err != nil {
		r.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	r.CatalogReloadsTotal.WithLabelValues("success").Inc()
	r.CatalogApplications.Set(float64(applications))
	r.CatalogLinks.Set(float64(links))
}
