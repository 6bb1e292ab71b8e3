// Package metrics holds per-run scalar summaries fed once per completed
// tick. Every metric satisfies sim.Metric.
package metrics
