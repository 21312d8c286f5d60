package hrAuth

import (
	"context"
	"testing"
	"time"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricLoginSuccess)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricLoginSuccess)
	}
}

func BenchmarkMetricsIncParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricLoginSuccess)
		}
	})
}

func BenchmarkMetricsIncDisabledParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricLoginSuccess)
		}
	})
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 12 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricValidateLatency, d)
		}
	})
}

func BenchmarkValidate(b *testing.B) {
	e := newBenchEngine(b)
	res, err := e.SignupAdmin(context.Background(), AdminSignupRequest{
		CompanyName: "Acme", Email: "boss@acme.test", Password: "admin-password-1",
	})
	if err != nil {
		b.Fatalf("signup failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Validate(context.Background(), res.Tokens.AccessToken); err != nil {
			b.Fatalf("validate failed: %v", err)
		}
	}
}

func newBenchEngine(b *testing.B) *Engine {
	b.Helper()
	cfg := testConfig()
	cfg.Security.EnableLoginThrottle = false
	cfg.Metrics.EnableLatencyHistograms = true

	e, err := New().
		WithConfig(cfg).
		WithDirectory(newMockDirectory()).
		WithCounterStore(fixedCounter{}).
		Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	return e
}
