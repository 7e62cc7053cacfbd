package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/remlic/remlic-api/api"
)

// Metrics exposes the in-process request metrics for debugging
type Metrics struct{}

// SummaryHandler returns process-wide request totals
func (m Metrics) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(api.GetMetrics().GetSummary())
}

// RoutesHandler returns per-route aggregates
func (m Metrics) RoutesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(formatRouteMetrics(api.GetMetrics().GetRouteMetrics()))
}

// SlowestRoutesHandler returns the slowest routes by average time
func (m Metrics) SlowestRoutesHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	routes := api.GetMetrics().GetSlowestRoutes(limit)
	result := make([]map[string]interface{}, len(routes))
	for i, route := range routes {
		result[i] = formatRoute(route)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// formatRouteMetrics converts duration fields to milliseconds for JSON serialization
func formatRouteMetrics(routes map[string]*api.RouteMetrics) map[string]interface{} {
	result := make(map[string]interface{}, len(routes))
	for key, route := range routes {
		result[key] = formatRoute(route)
	}
	return result
}

func formatRoute(route *api.RouteMetrics) map[string]interface{} {
	return map[string]interface{}{
		"method":      route.Method,
		"path":        route.Path,
		"count":       route.Count,
		"errorCount":  route.ErrorCount,
		"avgTime":     route.AvgTime.Milliseconds(),
		"minTime":     route.MinTime.Milliseconds(),
		"maxTime":     route.MaxTime.Milliseconds(),
		"lastRequest": route.LastRequest,
	}
}
