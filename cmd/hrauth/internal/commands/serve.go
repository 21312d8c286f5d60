package commands

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/hrAuth/internal/httpapi"
	promexport "github.com/MrEthical07/hrAuth/metrics/export/prometheus"
)

type ServeCmd struct {
	Listen     string `help:"HTTP listen address" default:"0.0.0.0:8080" env:"HRAUTH_LISTEN"`
	TrustProxy bool   `help:"take client IPs from X-Forwarded-For / X-Real-IP" env:"HRAUTH_TRUST_PROXY"`
	NoMetrics  bool   `help:"do not expose GET /metrics" env:"HRAUTH_NO_METRICS"`

	Engine   EngineFlags  `embed:""`
	Backends BackendFlags `embed:""`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals.Debug)
	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting hrauth")

	if c.Backends.Dev {
		if err := c.Engine.devSecrets(log); err != nil {
			return err
		}
	}

	b, err := c.Backends.open(ctx, log)
	if err != nil {
		return err
	}
	defer b.close()

	engine, err := buildEngine(&c.Engine, b, c.Backends.RedisPrefix, log)
	if err != nil {
		return err
	}

	opts := httpapi.Options{
		Logger:            log,
		Ping:              b.ping,
		TrustProxyHeaders: c.TrustProxy,
	}
	if !c.NoMetrics {
		opts.Metrics = promexport.NewPrometheusExporter(engine).Handler()
	}

	srv := configureHTTPServer(c.Listen, httpapi.New(engine, opts))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", c.Listen).Msg("Listening for HTTP connections")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
