package postgres

import (
	"context"
	"errors"
	"testing"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapPostgresErrorConflicts(t *testing.T) {
	cases := map[string]string{
		"tenants_code_key":      hrAuth.FieldTenantCode,
		"accounts_login_id_key": hrAuth.FieldLoginID,
		"accounts_email_key":    hrAuth.FieldEmail,
	}
	for constraint, field := range cases {
		err := mapPostgresError("insert", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint})

		var conflict *hrAuth.ConflictError
		if !errors.As(err, &conflict) || conflict.Field != field {
			t.Fatalf("%s: expected conflict on %s, got %v", constraint, field, err)
		}
	}
}

func TestMapPostgresErrorUnavailable(t *testing.T) {
	err := mapPostgresError("insert", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "accounts_pkey"})
	if !errors.Is(err, hrAuth.ErrStoreUnavailable) {
		t.Fatalf("unknown constraint should be a store failure, got %v", err)
	}

	err = mapPostgresError("insert", &pgconn.PgError{Code: pgerrcode.AdminShutdown})
	if !errors.Is(err, hrAuth.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	if err := mapPostgresError("insert", context.Canceled); !errors.Is(err, context.Canceled) || errors.Is(err, hrAuth.ErrStoreUnavailable) {
		t.Fatalf("cancellation should pass through, got %v", err)
	}
	if mapPostgresError("insert", nil) != nil {
		t.Fatal("nil should map to nil")
	}
}

func TestLoadMigrationsSorted(t *testing.T) {
	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations")
	}
	for i := 1; i < len(migrations); i++ {
		if migrations[i-1].version >= migrations[i].version {
			t.Fatalf("migrations out of order: %d then %d", migrations[i-1].version, migrations[i].version)
		}
	}
}

func TestNewPoolRejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	if _, err := NewPool(ctx, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("nil config: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewPool(ctx, &Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("empty conn string: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := NewPool(ctx, &Config{ConnString: "postgres://%zz"}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("unparsable conn string: expected ErrInvalidConfig, got %v", err)
	}
}
