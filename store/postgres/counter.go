package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/hrAuth/counter"
	"github.com/jackc/pgx/v5"
)

var _ counter.Store = (*Directory)(nil)

// Increment implements counter.Store with a single upsert, so concurrent callers for the
// same (tenant, year) receive distinct values.
func (d *Directory) Increment(ctx context.Context, tenantID string, year int) (int64, error) {
	if tenantID == "" || year <= 0 {
		return 0, counter.ErrInvalidKey
	}

	var value int64
	err := d.pool.QueryRow(ctx, `
		INSERT INTO tenant_serials (tenant_id, year, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, year) DO UPDATE SET value = tenant_serials.value + 1
		RETURNING value
	`, tenantID, year).Scan(&value)
	if err != nil {
		return 0, counterError(err)
	}
	return value, nil
}

// Current implements counter.Store.
func (d *Directory) Current(ctx context.Context, tenantID string, year int) (int64, error) {
	if tenantID == "" || year <= 0 {
		return 0, counter.ErrInvalidKey
	}

	var value int64
	err := d.pool.QueryRow(ctx, `
		SELECT value FROM tenant_serials WHERE tenant_id = $1 AND year = $2
	`, tenantID, year).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, counterError(err)
	}
	return value, nil
}

func counterError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", counter.ErrUnavailable, err)
}
