package counter

import (
	"context"
	"errors"
	"strconv"
)

var (
	// ErrUnavailable is returned when the backing store cannot be reached or times out.
	ErrUnavailable = errors.New("counter store unavailable")
	// ErrInvalidKey is returned for an empty tenant or a non-positive year.
	ErrInvalidKey = errors.New("invalid counter key")
)

// Store is the serial counter contract consumed by the identifier generator.
type Store interface {
	// Increment atomically adds one to the (tenantID, year) counter and returns the new value.
	Increment(ctx context.Context, tenantID string, year int) (int64, error)
	// Current returns the last issued value, or 0 when no serial was drawn yet.
	Current(ctx context.Context, tenantID string, year int) (int64, error)
}

func validateKey(tenantID string, year int) error {
	if tenantID == "" || year <= 0 {
		return ErrInvalidKey
	}
	return nil
}

func yearField(year int) string {
	return strconv.Itoa(year)
}
