// Package otel publishes goGate engine metrics through an OpenTelemetry
// Meter.
//
// Each counter becomes an Int64ObservableCounter. The login latency
// histogram becomes a cumulative bucket gauge with an "le" attribute plus a
// count gauge. One callback reads a single snapshot per collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider; callers supply the Meter.
//   - Mutate engine state.
package otel
