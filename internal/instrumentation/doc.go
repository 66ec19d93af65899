// Package instrumentation provides OpenTelemetry metrics for the calbridge
// application.
//
// Metrics are exported through the Prometheus exporter by default and
// scraped from the dedicated metrics server. The stdout exporter is
// available for local development. Disable everything with
// INSTRUMENTATION_ENABLED=false; the recorder degrades to a no-op.
package instrumentation
