package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/redis/go-redis/v9"
)

const maxRecodeAttempts = 3

type tenantJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedAt string `json:"created_at"`
}

type accountJSON struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	Role          string `json:"role"`
	LoginID       string `json:"login_id"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	YearOfJoining int    `json:"year_of_joining"`
	PasswordHash  string `json:"password_hash"`
	PasswordState string `json:"password_state"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
}

// Directory is a Redis-backed hrAuth.Directory. It is safe for concurrent use.
type Directory struct {
	redis  redis.UniversalClient
	prefix string
}

var _ hrAuth.Directory = (*Directory)(nil)

// New returns a Directory using keys under prefix (default "hr").
func New(client redis.UniversalClient, prefix string) *Directory {
	if prefix == "" {
		prefix = "hr"
	}
	return &Directory{redis: client, prefix: prefix}
}

func (d *Directory) tenantKey(id string) string       { return d.prefix + ":tenant:" + id }
func (d *Directory) tenantsKey() string               { return d.prefix + ":tenants" }
func (d *Directory) codeKey(code string) string       { return d.prefix + ":code:" + code }
func (d *Directory) accountKey(id string) string      { return d.prefix + ":account:" + id }
func (d *Directory) loginIDKey(loginID string) string { return d.prefix + ":loginid:" + loginID }
func (d *Directory) emailKey(email string) string     { return d.prefix + ":email:" + email }
func (d *Directory) accountsKey(tenantID string, role hrAuth.Role) string {
	return d.prefix + ":accounts:" + tenantID + ":" + string(role)
}

type claim struct {
	key   string
	field string
	owner string
}

type index struct {
	key    string
	score  float64
	member string
}

func (d *Directory) insert(ctx context.Context, claims []claim, records map[string]string, indexes []index) error {
	keys := make([]string, 0, len(claims)+len(records)+len(indexes))
	args := []interface{}{len(claims), len(records), len(indexes)}

	for _, c := range claims {
		keys = append(keys, c.key)
	}
	for _, c := range claims {
		args = append(args, c.owner)
	}
	for key, value := range records {
		keys = append(keys, key)
		args = append(args, value)
	}
	for _, ix := range indexes {
		keys = append(keys, ix.key)
		args = append(args, ix.score, ix.member)
	}

	status, err := insertLua.Run(ctx, d.redis, keys, args...).Int64()
	if err != nil {
		return unavailable(err)
	}
	if status > 0 && int(status) <= len(claims) {
		return hrAuth.NewConflict(claims[status-1].field)
	}
	return nil
}

// CreateTenant implements hrAuth.Directory.
func (d *Directory) CreateTenant(ctx context.Context, tenant hrAuth.Tenant, admin hrAuth.AccountRecord) error {
	tenantRaw, err := json.Marshal(tenantToJSON(tenant))
	if err != nil {
		return err
	}
	accountRaw, err := json.Marshal(accountToJSON(admin))
	if err != nil {
		return err
	}

	claims := []claim{{key: d.codeKey(tenant.Code), field: hrAuth.FieldTenantCode, owner: tenant.ID}}
	claims = append(claims, d.accountClaims(admin)...)

	return d.insert(ctx, claims,
		map[string]string{
			d.tenantKey(tenant.ID): string(tenantRaw),
			d.accountKey(admin.ID): string(accountRaw),
		},
		[]index{
			{key: d.tenantsKey(), score: score(tenant.CreatedAt), member: tenant.ID},
			{key: d.accountsKey(admin.TenantID, admin.Role), score: score(admin.CreatedAt), member: admin.ID},
		},
	)
}

// InsertAccount implements hrAuth.Directory.
func (d *Directory) InsertAccount(ctx context.Context, account hrAuth.AccountRecord) error {
	raw, err := json.Marshal(accountToJSON(account))
	if err != nil {
		return err
	}
	return d.insert(ctx, d.accountClaims(account),
		map[string]string{d.accountKey(account.ID): string(raw)},
		[]index{{key: d.accountsKey(account.TenantID, account.Role), score: score(account.CreatedAt), member: account.ID}},
	)
}

func (d *Directory) accountClaims(a hrAuth.AccountRecord) []claim {
	var claims []claim
	if a.LoginID != "" {
		claims = append(claims, claim{key: d.loginIDKey(a.LoginID), field: hrAuth.FieldLoginID, owner: a.ID})
	}
	if a.Email != "" {
		claims = append(claims, claim{key: d.emailKey(a.Email), field: hrAuth.FieldEmail, owner: a.ID})
	}
	return claims
}

// GetTenant implements hrAuth.Directory.
func (d *Directory) GetTenant(ctx context.Context, tenantID string) (hrAuth.Tenant, error) {
	var t tenantJSON
	if err := d.getJSON(ctx, d.tenantKey(tenantID), &t); err != nil {
		return hrAuth.Tenant{}, err
	}
	return tenantFromJSON(t), nil
}

// FindTenantByCode implements hrAuth.Directory.
func (d *Directory) FindTenantByCode(ctx context.Context, code string) (hrAuth.Tenant, error) {
	id, err := d.resolve(ctx, d.codeKey(code))
	if err != nil {
		return hrAuth.Tenant{}, err
	}
	return d.GetTenant(ctx, id)
}

// ListTenants implements hrAuth.Directory.
func (d *Directory) ListTenants(ctx context.Context) ([]hrAuth.Tenant, error) {
	ids, err := d.redis.ZRange(ctx, d.tenantsKey(), 0, -1).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	out := make([]hrAuth.Tenant, 0, len(ids))
	err = d.mgetJSON(ctx, ids, d.tenantKey, func(raw []byte) error {
		var t tenantJSON
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		out = append(out, tenantFromJSON(t))
		return nil
	})
	return out, err
}

// UpdateTenantCode implements hrAuth.Directory.
func (d *Directory) UpdateTenantCode(ctx context.Context, tenantID, code string) error {
	for attempt := 0; attempt < maxRecodeAttempts; attempt++ {
		current, err := d.GetTenant(ctx, tenantID)
		if err != nil {
			return err
		}

		status, err := recodeLua.Run(ctx, d.redis,
			[]string{d.tenantKey(tenantID), d.codeKey(current.Code), d.codeKey(code)},
			current.Code, code, tenantID,
		).Int64()
		if err != nil {
			return unavailable(err)
		}

		switch status {
		case statusOK:
			return nil
		case statusNotFound:
			return hrAuth.ErrNotFound
		case statusConflict:
			return hrAuth.NewConflict(hrAuth.FieldTenantCode)
		case statusStale:
			continue
		default:
			return fmt.Errorf("redis directory: unexpected recode status %d", status)
		}
	}
	return fmt.Errorf("%w: tenant code changed concurrently", hrAuth.ErrStoreUnavailable)
}

// GetAccount implements hrAuth.Directory.
func (d *Directory) GetAccount(ctx context.Context, accountID string) (hrAuth.AccountRecord, error) {
	var a accountJSON
	if err := d.getJSON(ctx, d.accountKey(accountID), &a); err != nil {
		return hrAuth.AccountRecord{}, err
	}
	return accountFromJSON(a), nil
}

// FindAccountByLoginID implements hrAuth.Directory.
func (d *Directory) FindAccountByLoginID(ctx context.Context, loginID string) (hrAuth.AccountRecord, error) {
	id, err := d.resolve(ctx, d.loginIDKey(loginID))
	if err != nil {
		return hrAuth.AccountRecord{}, err
	}
	return d.GetAccount(ctx, id)
}

// FindAccountByEmail implements hrAuth.Directory.
func (d *Directory) FindAccountByEmail(ctx context.Context, email string) (hrAuth.AccountRecord, error) {
	id, err := d.resolve(ctx, d.emailKey(email))
	if err != nil {
		return hrAuth.AccountRecord{}, err
	}
	return d.GetAccount(ctx, id)
}

// ListAccounts implements hrAuth.Directory.
func (d *Directory) ListAccounts(ctx context.Context, tenantID string, role hrAuth.Role) ([]hrAuth.AccountRecord, error) {
	ids, err := d.redis.ZRevRange(ctx, d.accountsKey(tenantID, role), 0, -1).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	out := make([]hrAuth.AccountRecord, 0, len(ids))
	err = d.mgetJSON(ctx, ids, d.accountKey, func(raw []byte) error {
		var a accountJSON
		if err := json.Unmarshal(raw, &a); err != nil {
			return err
		}
		out = append(out, accountFromJSON(a))
		return nil
	})
	return out, err
}

// UpdatePassword implements hrAuth.Directory.
func (d *Directory) UpdatePassword(ctx context.Context, accountID, passwordHash string, state hrAuth.PasswordState) error {
	return d.patch(ctx, d.accountKey(accountID), "password_hash", passwordHash, "password_state", state.String())
}

// UpgradePasswordHash implements hrAuth.Directory.
func (d *Directory) UpgradePasswordHash(ctx context.Context, accountID, oldHash, newHash string) (bool, error) {
	status, err := swapHashLua.Run(ctx, d.redis, []string{d.accountKey(accountID)}, oldHash, newHash).Int64()
	if err != nil {
		return false, unavailable(err)
	}
	switch status {
	case statusNotFound:
		return false, hrAuth.ErrNotFound
	case statusStale:
		return false, nil
	}
	return true, nil
}

// SetActive implements hrAuth.Directory.
func (d *Directory) SetActive(ctx context.Context, accountID string, active bool) error {
	return d.patch(ctx, d.accountKey(accountID), "active", fmt.Sprint(active))
}

func (d *Directory) patch(ctx context.Context, key string, fieldValues ...interface{}) error {
	status, err := patchLua.Run(ctx, d.redis, []string{key}, fieldValues...).Int64()
	if err != nil {
		return unavailable(err)
	}
	if status == statusNotFound {
		return hrAuth.ErrNotFound
	}
	return nil
}

func (d *Directory) resolve(ctx context.Context, claimKey string) (string, error) {
	id, err := d.redis.Get(ctx, claimKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", hrAuth.ErrNotFound
		}
		return "", unavailable(err)
	}
	return id, nil
}

func (d *Directory) getJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := d.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return hrAuth.ErrNotFound
		}
		return unavailable(err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("redis directory: decode %s: %w", key, err)
	}
	return nil
}

func (d *Directory) mgetJSON(ctx context.Context, ids []string, keyOf func(string) string, each func([]byte) error) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}

	values, err := d.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return unavailable(err)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if err := each([]byte(s)); err != nil {
			return fmt.Errorf("redis directory: decode: %w", err)
		}
	}
	return nil
}

func unavailable(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", hrAuth.ErrStoreUnavailable, err)
}

func score(t time.Time) float64 {
	return float64(t.UnixNano())
}

func tenantToJSON(t hrAuth.Tenant) tenantJSON {
	return tenantJSON{
		ID:        t.ID,
		Name:      t.DisplayName,
		Code:      t.Code,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func tenantFromJSON(t tenantJSON) hrAuth.Tenant {
	created, _ := time.Parse(time.RFC3339Nano, t.CreatedAt)
	return hrAuth.Tenant{ID: t.ID, DisplayName: t.Name, Code: t.Code, CreatedAt: created}
}

func accountToJSON(a hrAuth.AccountRecord) accountJSON {
	return accountJSON{
		ID:            a.ID,
		TenantID:      a.TenantID,
		Role:          string(a.Role),
		LoginID:       a.LoginID,
		Email:         a.Email,
		Phone:         a.Phone,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		YearOfJoining: a.YearOfJoining,
		PasswordHash:  a.PasswordHash,
		PasswordState: a.PasswordState.String(),
		Active:        a.Active,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func accountFromJSON(a accountJSON) hrAuth.AccountRecord {
	created, _ := time.Parse(time.RFC3339Nano, a.CreatedAt)
	state := hrAuth.StateNormal
	if a.PasswordState == hrAuth.StateMustResetPassword.String() {
		state = hrAuth.StateMustResetPassword
	}
	return hrAuth.AccountRecord{
		ID:            a.ID,
		TenantID:      a.TenantID,
		Role:          hrAuth.Role(a.Role),
		LoginID:       a.LoginID,
		Email:         a.Email,
		Phone:         a.Phone,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		YearOfJoining: a.YearOfJoining,
		PasswordHash:  a.PasswordHash,
		PasswordState: state,
		Active:        a.Active,
		CreatedAt:     created,
	}
}
