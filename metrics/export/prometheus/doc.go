// Package prometheus exposes engine metrics as a client_golang collector.
//
// [NewPrometheusExporter] wraps an [hrAuth.Engine]. The exporter is a
// prometheus.Collector; mount [PrometheusExporter.Handler] for a private registry or call
// [PrometheusExporter.Register] on your own. Counter names are hrauth_*_total; the one
// histogram is hrauth_validate_latency_seconds and is only emitted when latency
// histograms are enabled.
//
// Nothing is registered in the global registry.
package prometheus
