package api

import (
	"regexp"
	"sort"
	"sync"
	"time"
)

// RequestTrace captures timing for a single request.
type RequestTrace struct {
	RequestID string        `json:"requestId"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// RouteMetrics aggregates request metrics for a single route.
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector aggregates request traces in the background. Traces are
// queued on a buffered channel and dropped when the buffer is full, so
// recording never blocks a request.
type MetricsCollector struct {
	mu            sync.RWMutex
	traces        []RequestTrace
	maxTraces     int
	routeMetrics  map[string]*RouteMetrics
	windowStart   time.Time
	totalRequests int64
	totalErrors   int64
	traceChan     chan RequestTrace
	stopChan      chan struct{}
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// GetMetrics returns the process-wide metrics collector, initializing it on
// first use.
func GetMetrics() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = &MetricsCollector{
			traces:       make([]RequestTrace, 0, 2048),
			maxTraces:    2048,
			routeMetrics: make(map[string]*RouteMetrics),
			windowStart:  time.Now(),
			traceChan:    make(chan RequestTrace, 1000),
			stopChan:     make(chan struct{}),
		}
		go globalMetrics.run()
	})
	return globalMetrics
}

// RecordTrace queues a trace for aggregation. If the buffer is full the trace
// is dropped.
func (mc *MetricsCollector) RecordTrace(trace RequestTrace) {
	select {
	case mc.traceChan <- trace:
	default:
	}
}

func (mc *MetricsCollector) run() {
	for {
		select {
		case trace := <-mc.traceChan:
			mc.record(trace)
		case <-mc.stopChan:
			return
		}
	}
}

func (mc *MetricsCollector) record(trace RequestTrace) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.traces) >= mc.maxTraces {
		mc.traces = mc.traces[1:]
	}
	mc.traces = append(mc.traces, trace)

	path := normalizeRoutePath(trace.Path)
	key := trace.Method + " " + path
	rm, ok := mc.routeMetrics[key]
	if !ok {
		rm = &RouteMetrics{Method: trace.Method, Path: path, MinTime: trace.Duration}
		mc.routeMetrics[key] = rm
	}

	rm.Count++
	rm.TotalTime += trace.Duration
	rm.AvgTime = rm.TotalTime / time.Duration(rm.Count)
	rm.LastRequest = trace.StartTime
	if trace.Duration < rm.MinTime {
		rm.MinTime = trace.Duration
	}
	if trace.Duration > rm.MaxTime {
		rm.MaxTime = trace.Duration
	}
	if trace.Status >= 400 {
		rm.ErrorCount++
		mc.totalErrors++
	}
	mc.totalRequests++
}

// GetRouteMetrics returns a copy of the per-route aggregates.
func (mc *MetricsCollector) GetRouteMetrics() map[string]*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*RouteMetrics, len(mc.routeMetrics))
	for k, v := range mc.routeMetrics {
		rm := *v
		result[k] = &rm
	}
	return result
}

// GetSummary returns process-wide totals since the window started.
func (mc *MetricsCollector) GetSummary() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var errorRate float64
	if mc.totalRequests > 0 {
		errorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}

	return map[string]interface{}{
		"totalRequests": mc.totalRequests,
		"totalErrors":   mc.totalErrors,
		"errorRate":     errorRate,
		"windowStart":   mc.windowStart,
		"routeCount":    len(mc.routeMetrics),
		"traceCount":    len(mc.traces),
	}
}

// GetSlowestRoutes returns up to limit routes sorted by average time,
// slowest first.
func (mc *MetricsCollector) GetSlowestRoutes(limit int) []*RouteMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	routes := make([]*RouteMetrics, 0, len(mc.routeMetrics))
	for _, rm := range mc.routeMetrics {
		cp := *rm
		routes = append(routes, &cp)
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].AvgTime > routes[j].AvgTime
	})
	if limit > 0 && limit < len(routes) {
		routes = routes[:limit]
	}
	return routes
}

var objectIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)

// normalizeRoutePath collapses object IDs into a placeholder so requests for
// different documents aggregate under one route.
func normalizeRoutePath(path string) string {
	path = objectIDPattern.ReplaceAllString(path, "/{id}$1")
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
