package postgres

import (
	"context"
	"errors"
	"fmt"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Directory implements hrAuth.Directory and counter.Store using PostgreSQL.
type Directory struct {
	pool *pgxpool.Pool
}

var _ hrAuth.Directory = (*Directory)(nil)

// New returns a Directory sharing pool.
func New(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

// Open connects, optionally migrates, and returns the Directory with its pool.
// Callers close the pool.
func Open(ctx context.Context, cfg *Config) (*Directory, *pgxpool.Pool, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return New(pool), pool, nil
}

const accountColumns = `
	id, tenant_id, role, COALESCE(login_id, ''), COALESCE(email, ''), phone,
	first_name, last_name, year_of_joining, password_hash, password_state, active, created_at
`

const insertAccountSQL = `
	INSERT INTO accounts (
		id, tenant_id, role, login_id, email, phone,
		first_name, last_name, year_of_joining, password_hash, password_state, active, created_at
	) VALUES (
		$1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13
	)
`

func accountArgs(a hrAuth.AccountRecord) []any {
	return []any{
		a.ID, a.TenantID, string(a.Role), a.LoginID, a.Email, a.Phone,
		a.FirstName, a.LastName, a.YearOfJoining, a.PasswordHash, a.PasswordState.String(), a.Active, a.CreatedAt,
	}
}

// CreateTenant implements hrAuth.Directory.
func (d *Directory) CreateTenant(ctx context.Context, tenant hrAuth.Tenant, admin hrAuth.AccountRecord) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return mapPostgresError("begin", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (id, display_name, code, created_at)
		VALUES ($1, $2, $3, $4)
	`, tenant.ID, tenant.DisplayName, tenant.Code, tenant.CreatedAt)
	if err != nil {
		return mapPostgresError("insert tenant", err)
	}

	if _, err := tx.Exec(ctx, insertAccountSQL, accountArgs(admin)...); err != nil {
		return mapPostgresError("insert admin", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapPostgresError("commit", err)
	}

	log.Debug().
		Str("tenant_id", tenant.ID).
		Str("code", tenant.Code).
		Msg("Created tenant")

	return nil
}

// GetTenant implements hrAuth.Directory.
func (d *Directory) GetTenant(ctx context.Context, tenantID string) (hrAuth.Tenant, error) {
	return d.queryTenant(ctx, `SELECT id, display_name, code, created_at FROM tenants WHERE id = $1`, tenantID)
}

// FindTenantByCode implements hrAuth.Directory.
func (d *Directory) FindTenantByCode(ctx context.Context, code string) (hrAuth.Tenant, error) {
	return d.queryTenant(ctx, `SELECT id, display_name, code, created_at FROM tenants WHERE code = $1`, code)
}

func (d *Directory) queryTenant(ctx context.Context, query string, arg string) (hrAuth.Tenant, error) {
	var t hrAuth.Tenant
	err := d.pool.QueryRow(ctx, query, arg).Scan(&t.ID, &t.DisplayName, &t.Code, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hrAuth.Tenant{}, hrAuth.ErrNotFound
		}
		return hrAuth.Tenant{}, mapPostgresError("get tenant", err)
	}
	return t, nil
}

// ListTenants implements hrAuth.Directory.
func (d *Directory) ListTenants(ctx context.Context) ([]hrAuth.Tenant, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, display_name, code, created_at
		FROM tenants
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, mapPostgresError("list tenants", err)
	}
	defer rows.Close()

	var out []hrAuth.Tenant
	for rows.Next() {
		var t hrAuth.Tenant
		if err := rows.Scan(&t.ID, &t.DisplayName, &t.Code, &t.CreatedAt); err != nil {
			return nil, mapPostgresError("scan tenant", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError("list tenants", err)
	}
	return out, nil
}

// UpdateTenantCode implements hrAuth.Directory.
func (d *Directory) UpdateTenantCode(ctx context.Context, tenantID, code string) error {
	result, err := d.pool.Exec(ctx, `UPDATE tenants SET code = $2 WHERE id = $1`, tenantID, code)
	if err != nil {
		return mapPostgresError("update tenant code", err)
	}
	if result.RowsAffected() == 0 {
		return hrAuth.ErrNotFound
	}
	return nil
}

// InsertAccount implements hrAuth.Directory.
func (d *Directory) InsertAccount(ctx context.Context, account hrAuth.AccountRecord) error {
	if _, err := d.pool.Exec(ctx, insertAccountSQL, accountArgs(account)...); err != nil {
		return mapPostgresError("insert account", err)
	}
	return nil
}

// GetAccount implements hrAuth.Directory.
func (d *Directory) GetAccount(ctx context.Context, accountID string) (hrAuth.AccountRecord, error) {
	return d.queryAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
}

// FindAccountByLoginID implements hrAuth.Directory.
func (d *Directory) FindAccountByLoginID(ctx context.Context, loginID string) (hrAuth.AccountRecord, error) {
	return d.queryAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE login_id = $1`, loginID)
}

// FindAccountByEmail implements hrAuth.Directory.
func (d *Directory) FindAccountByEmail(ctx context.Context, email string) (hrAuth.AccountRecord, error) {
	return d.queryAccount(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (d *Directory) queryAccount(ctx context.Context, query, arg string) (hrAuth.AccountRecord, error) {
	a, err := scanAccount(d.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hrAuth.AccountRecord{}, hrAuth.ErrNotFound
		}
		return hrAuth.AccountRecord{}, mapPostgresError("get account", err)
	}
	return a, nil
}

// ListAccounts implements hrAuth.Directory.
func (d *Directory) ListAccounts(ctx context.Context, tenantID string, role hrAuth.Role) ([]hrAuth.AccountRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE tenant_id = $1 AND role = $2
		ORDER BY created_at DESC, id DESC
	`, tenantID, string(role))
	if err != nil {
		return nil, mapPostgresError("list accounts", err)
	}
	defer rows.Close()

	var out []hrAuth.AccountRecord
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, mapPostgresError("scan account", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError("list accounts", err)
	}
	return out, nil
}

// UpdatePassword implements hrAuth.Directory.
func (d *Directory) UpdatePassword(ctx context.Context, accountID, passwordHash string, state hrAuth.PasswordState) error {
	result, err := d.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, password_state = $3 WHERE id = $1
	`, accountID, passwordHash, state.String())
	if err != nil {
		return mapPostgresError("update password", err)
	}
	if result.RowsAffected() == 0 {
		return hrAuth.ErrNotFound
	}
	return nil
}

// UpgradePasswordHash implements hrAuth.Directory.
func (d *Directory) UpgradePasswordHash(ctx context.Context, accountID, oldHash, newHash string) (bool, error) {
	var found, swapped bool
	err := d.pool.QueryRow(ctx, `
		WITH swapped AS (
			UPDATE accounts SET password_hash = $3 WHERE id = $1 AND password_hash = $2 RETURNING id
		)
		SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1), EXISTS (SELECT 1 FROM swapped)
	`, accountID, oldHash, newHash).Scan(&found, &swapped)
	if err != nil {
		return false, mapPostgresError("upgrade password hash", err)
	}
	if !found {
		return false, hrAuth.ErrNotFound
	}
	return swapped, nil
}

// SetActive implements hrAuth.Directory.
func (d *Directory) SetActive(ctx context.Context, accountID string, active bool) error {
	result, err := d.pool.Exec(ctx, `UPDATE accounts SET active = $2 WHERE id = $1`, accountID, active)
	if err != nil {
		return mapPostgresError("set active", err)
	}
	if result.RowsAffected() == 0 {
		return hrAuth.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (hrAuth.AccountRecord, error) {
	var (
		a     hrAuth.AccountRecord
		role  string
		state string
	)
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&role,
		&a.LoginID,
		&a.Email,
		&a.Phone,
		&a.FirstName,
		&a.LastName,
		&a.YearOfJoining,
		&a.PasswordHash,
		&state,
		&a.Active,
		&a.CreatedAt,
	)
	if err != nil {
		return hrAuth.AccountRecord{}, err
	}

	a.Role = hrAuth.Role(role)
	switch state {
	case hrAuth.StateNormal.String():
		a.PasswordState = hrAuth.StateNormal
	case hrAuth.StateMustResetPassword.String():
		a.PasswordState = hrAuth.StateMustResetPassword
	default:
		return hrAuth.AccountRecord{}, fmt.Errorf("unknown password state %q", state)
	}
	return a, nil
}
