package otel

import (
	"context"
	"errors"
	"fmt"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/MrEthical07/hrAuth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() hrAuth.MetricsSnapshot
}

// latencyGauges mirrors one engine histogram as a gauge per cumulative bucket plus a
// total, since engine buckets cannot be replayed into an OTel histogram.
type latencyGauges struct {
	id      hrAuth.MetricID
	buckets [8]metric.Int64ObservableGauge
	total   metric.Int64ObservableGauge
}

// OTelExporter owns the callback registration; Close unregisters it.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     map[hrAuth.MetricID]metric.Int64ObservableCounter
	latencies    []latencyGauges
	observables  []metric.Observable
}

// NewOTelExporter registers observable instruments on meter that read engine.
func NewOTelExporter(meter metric.Meter, engine *hrAuth.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource is NewOTelExporter for any snapshot source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[hrAuth.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
	}
	for _, def := range internaldefs.CounterDefs {
		if err := e.addCounter(meter, def); err != nil {
			return nil, err
		}
	}
	for _, def := range internaldefs.HistogramDefs {
		if err := e.addLatency(meter, def); err != nil {
			return nil, err
		}
	}

	registration, err := meter.RegisterCallback(e.observe, e.observables...)
	if err != nil {
		return nil, fmt.Errorf("register hrauth metrics callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *OTelExporter) addCounter(meter metric.Meter, def internaldefs.CounterDef) error {
	c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
	if err != nil {
		return fmt.Errorf("counter %s: %w", def.Name, err)
	}
	e.counters[def.ID] = c
	e.observables = append(e.observables, c)
	return nil
}

func (e *OTelExporter) addLatency(meter metric.Meter, def internaldefs.HistogramDef) error {
	gauge := func(name, help string) (metric.Int64ObservableGauge, error) {
		g, err := meter.Int64ObservableGauge(name, metric.WithDescription(help))
		if err != nil {
			return nil, fmt.Errorf("gauge %s: %w", name, err)
		}
		e.observables = append(e.observables, g)
		return g, nil
	}

	l := latencyGauges{id: def.ID}
	for i, suffix := range internaldefs.HistogramBoundSuffix {
		g, err := gauge(def.Name+"_bucket_le_"+suffix, def.Help+" Cumulative bucket count.")
		if err != nil {
			return err
		}
		l.buckets[i] = g
	}
	total, err := gauge(def.Name+"_count", def.Help+" Sample count.")
	if err != nil {
		return err
	}
	l.total = total
	e.latencies = append(e.latencies, l)
	return nil
}

// observe reports one snapshot. Histograms the engine has not recorded yet are skipped.
func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, c := range e.counters {
		o.ObserveInt64(c, int64(snap.Counters[id]))
	}
	for _, l := range e.latencies {
		raw, ok := snap.Histograms[l.id]
		if !ok {
			continue
		}
		running := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, g := range l.buckets {
			o.ObserveInt64(g, int64(running[i]))
		}
		o.ObserveInt64(l.total, int64(running[len(running)-1]))
	}
	return nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
