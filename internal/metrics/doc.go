// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - WebSocket frame rates, decode failures and disconnects per client
//   - Inbound queue depth and handler latency
//   - Active market-data subscriptions
//   - Recorder row throughput
package metrics
