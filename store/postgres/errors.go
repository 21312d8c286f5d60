package postgres

import (
	"context"
	"errors"
	"fmt"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var constraintFields = map[string]string{
	"tenants_code_key":      hrAuth.FieldTenantCode,
	"accounts_login_id_key": hrAuth.FieldLoginID,
	"accounts_email_key":    hrAuth.FieldEmail,
}

// mapPostgresError translates driver errors into directory errors. Unique violations on
// known constraints become conflicts; everything else is a store failure.
func mapPostgresError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if field, ok := constraintFields[pgErr.ConstraintName]; ok {
			return hrAuth.NewConflict(field)
		}
	}

	return fmt.Errorf("%w: %s: %w", hrAuth.ErrStoreUnavailable, op, err)
}
