package instrumentation

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with request paths.

// RouteUnmatched is the path label recorded for requests that matched
// no registered route.
const RouteUnmatched = "unmatched"

// NormalizeRoute maps an http.ServeMux pattern to a bounded path label.
// Requests that matched no route all share a single bucket, so arbitrary
// request paths never become metric label values.
//
// Example:
//
//	NormalizeRoute("POST /api/calendar/event")  // "POST /api/calendar/event"
//	NormalizeRoute("")                          // "unmatched"
func NormalizeRoute(pattern string) string {
	if pattern == "" {
		return RouteUnmatched
	}
	return pattern
}
