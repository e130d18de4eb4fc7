// Package prometheus renders goGate engine metrics in the Prometheus text
// exposition format.
//
// Counters are named gogate_*_total. The login latency histogram is
// gogate_login_latency_seconds and only appears when latency histograms are
// enabled on the engine.
//
// # What this package must NOT do
//
//   - Register with a global registry; callers mount [Exporter.Handler].
//   - Mutate engine state.
package prometheus
