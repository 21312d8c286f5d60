// Package internaldefs holds the metric names and histogram layout shared by the
// Prometheus and OpenTelemetry exporters.
package internaldefs
