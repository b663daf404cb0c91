// Package prometheus renders goJobs metrics in the Prometheus text exposition format.
//
// The exporter reads a snapshot on every scrape and never registers anything globally;
// callers mount [PrometheusExporter.Handler] wherever they serve /metrics.
package prometheus
