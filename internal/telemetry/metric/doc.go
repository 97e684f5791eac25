// Package metric provides Prometheus metrics for the chat backend.
//
// Registry owns a private prometheus.Registry with Go runtime and process
// collectors plus the application counters and histograms. Handler exposes
// it in the Prometheus text format at /metrics.
package metric
