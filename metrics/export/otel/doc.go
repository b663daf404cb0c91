// Package otel publishes goJobs metrics through an OpenTelemetry [metric.Meter].
//
// Every counter becomes an Int64ObservableCounter. The verify latency histogram becomes
// one cumulative Int64ObservableGauge with an "le" attribute per bucket, plus a count
// gauge. A single callback reads the snapshot on each collection; the caller owns the
// MeterProvider and its readers.
package otel
