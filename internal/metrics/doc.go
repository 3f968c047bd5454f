// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Staged file outcomes (uploaded, duplicate, unresolved, out of window)
//   - Rows inserted and per-chunk insert latency
//   - Acquisition tool runs per instrument
//   - Run outcomes and last-success timestamp
//
// One-shot runs push to a Pushgateway; scheduled mode serves /metrics.
package metrics
