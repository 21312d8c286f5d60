// Package otel bridges engine metrics to an OpenTelemetry meter through observable
// instruments read from engine snapshots at collection time.
package otel
