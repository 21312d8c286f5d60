package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/MrEthical07/hrAuth/counter"
	"github.com/MrEthical07/hrAuth/store/postgres"
	storeredis "github.com/MrEthical07/hrAuth/store/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BackendFlags select where accounts, tenants and counters live. Redis is always
// required for login throttling; Postgres, when configured, owns the directory and the
// serial counters.
type BackendFlags struct {
	RedisAddr     string `help:"Redis address" default:"localhost:6379" env:"HRAUTH_REDIS_ADDR"`
	RedisPassword string `help:"Redis password" env:"HRAUTH_REDIS_PASSWORD"`
	RedisDB       int    `help:"Redis database number" default:"0" env:"HRAUTH_REDIS_DB"`
	RedisPrefix   string `help:"key prefix for every Redis key" default:"hr" env:"HRAUTH_REDIS_PREFIX"`

	Dev bool `help:"use an embedded in-memory Redis (development only, data is lost on exit)" env:"HRAUTH_DEV"`

	ConnectRetry time.Duration `help:"how long to keep retrying backends at startup" default:"30s" env:"HRAUTH_CONNECT_RETRY"`

	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

type PostgresFlags struct {
	ConnString  string `help:"PostgreSQL connection string; enables the Postgres directory" env:"HRAUTH_POSTGRES_CONN_STRING"`
	MaxConns    int32  `help:"maximum number of connections in pool" default:"20"`
	MinConns    int32  `help:"minimum number of connections in pool" default:"2"`
	AutoMigrate bool   `help:"run database migrations on startup" default:"false" env:"HRAUTH_POSTGRES_AUTO_MIGRATE"`
}

type backends struct {
	redis     redis.UniversalClient
	directory hrAuth.Directory
	counter   counter.Store
	close     func()
}

func (b *backends) ping(ctx context.Context) error {
	return b.redis.Ping(ctx).Err()
}

func (f *BackendFlags) open(ctx context.Context, log zerolog.Logger) (*backends, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	addr := f.RedisAddr
	if f.Dev {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded redis: %w", err)
		}
		closers = append(closers, mr.Close)
		addr = mr.Addr()
		log.Warn().Str("addr", addr).Msg("Using embedded in-memory Redis")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: f.RedisPassword,
		DB:       f.RedisDB,
	})
	closers = append(closers, func() { _ = rdb.Close() })

	if _, err := retry(ctx, log, "redis", f.ConnectRetry, func() (struct{}, error) {
		return struct{}{}, rdb.Ping(ctx).Err()
	}); err != nil {
		closeAll()
		return nil, err
	}

	b := &backends{redis: rdb}

	if f.Postgres.ConnString == "" {
		b.directory = storeredis.New(rdb, f.RedisPrefix)
		b.counter = counter.NewRedis(rdb, f.RedisPrefix)
		b.close = closeAll
		log.Info().Str("redis", addr).Msg("Using Redis directory")
		return b, nil
	}

	cfg := &postgres.Config{
		ConnString:  f.Postgres.ConnString,
		MaxConns:    f.Postgres.MaxConns,
		MinConns:    f.Postgres.MinConns,
		AutoMigrate: f.Postgres.AutoMigrate,
	}
	dir, err := retry(ctx, log, "postgres", f.ConnectRetry, func() (*postgres.Directory, error) {
		dir, pool, err := postgres.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		return dir, nil
	})
	if err != nil {
		closeAll()
		return nil, err
	}

	b.directory = dir
	b.counter = dir
	b.close = closeAll
	log.Info().Str("redis", addr).Bool("auto_migrate", cfg.AutoMigrate).Msg("Using Postgres directory")
	return b, nil
}

// retry runs op with exponential backoff until it succeeds, ctx ends, or maxElapsed
// passes. Configuration errors are not retried.
func retry[T any](ctx context.Context, log zerolog.Logger, name string, maxElapsed time.Duration, op func() (T, error)) (T, error) {
	attempt := 0
	v, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, context.Canceled) || isConfigError(err) {
			return v, backoff.Permanent(err)
		}
		log.Warn().Err(err).Str("backend", name).Int("attempt", attempt).Msg("Backend not reachable, retrying")
		return v, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxElapsed),
	)
	if err != nil {
		return v, fmt.Errorf("failed to connect to %s: %w", name, err)
	}
	return v, nil
}

func isConfigError(err error) bool {
	return errors.Is(err, postgres.ErrInvalidConfig)
}
