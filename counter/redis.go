package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "hr"

// Redis stores counters as one hash per tenant with one field per year. HINCRBY is atomic
// on the server, so concurrent increments never collide.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis-backed [Store]. An empty prefix defaults to "hr".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{redis: client, prefix: prefix}
}

// Increment implements [Store].
func (r *Redis) Increment(ctx context.Context, tenantID string, year int) (int64, error) {
	if err := validateKey(tenantID, year); err != nil {
		return 0, err
	}

	value, err := r.redis.HIncrBy(ctx, r.key(tenantID), yearField(year), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}

// Current implements [Store].
func (r *Redis) Current(ctx context.Context, tenantID string, year int) (int64, error) {
	if err := validateKey(tenantID, year); err != nil {
		return 0, err
	}

	value, err := r.redis.HGet(ctx, r.key(tenantID), yearField(year)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}

func (r *Redis) key(tenantID string) string {
	return r.prefix + ":counter:" + tenantID
}
