// Package metrics exposes Prometheus instrumentation for the Hearth API:
// HTTP request counts and latencies, access assertion outcomes and search
// result sizes. A Metrics value satisfies service.AccessObserver and
// service.SearchObserver.
package metrics
