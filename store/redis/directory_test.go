package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestDirectory(t *testing.T) (*Directory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "test"), mr
}

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func seedTenant(t *testing.T, d *Directory, id, code, email string) (hrAuth.Tenant, hrAuth.AccountRecord) {
	t.Helper()
	tenant := hrAuth.Tenant{ID: id, DisplayName: "Tenant " + id, Code: code, CreatedAt: base}
	admin := hrAuth.AccountRecord{
		ID:            id + "-admin",
		TenantID:      id,
		Role:          hrAuth.RoleAdmin,
		Email:         email,
		FirstName:     "Admin",
		LastName:      "User",
		PasswordHash:  "hash",
		PasswordState: hrAuth.StateNormal,
		Active:        true,
		CreatedAt:     base,
	}
	if err := d.CreateTenant(context.Background(), tenant, admin); err != nil {
		t.Fatalf("CreateTenant failed: %v", err)
	}
	return tenant, admin
}

func employee(id, tenantID, loginID, email string, created time.Time) hrAuth.AccountRecord {
	return hrAuth.AccountRecord{
		ID:            id,
		TenantID:      tenantID,
		Role:          hrAuth.RoleEmployee,
		LoginID:       loginID,
		Email:         email,
		FirstName:     "Jane",
		LastName:      "Doe",
		YearOfJoining: 2024,
		PasswordHash:  "hash",
		PasswordState: hrAuth.StateMustResetPassword,
		Active:        true,
		CreatedAt:     created,
	}
}

func TestCreateTenantAndLookups(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()
	tenant, admin := seedTenant(t, d, "t1", "AC", "boss@acme.test")

	got, err := d.FindTenantByCode(ctx, "AC")
	if err != nil {
		t.Fatalf("FindTenantByCode failed: %v", err)
	}
	if got != tenant {
		t.Fatalf("tenant mismatch: got %+v want %+v", got, tenant)
	}

	acc, err := d.FindAccountByEmail(ctx, "boss@acme.test")
	if err != nil {
		t.Fatalf("FindAccountByEmail failed: %v", err)
	}
	if acc != admin {
		t.Fatalf("admin mismatch: got %+v want %+v", acc, admin)
	}

	if _, err := d.GetTenant(ctx, "missing"); !errors.Is(err, hrAuth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := d.FindAccountByLoginID(ctx, "ACJADO20240001"); !errors.Is(err, hrAuth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTenantConflicts(t *testing.T) {
	d, mr := newTestDirectory(t)
	ctx := context.Background()
	_, _ = seedTenant(t, d, "t1", "AC", "boss@acme.test")

	cases := []struct {
		name  string
		code  string
		email string
		field string
	}{
		{name: "code", code: "AC", email: "other@acme.test", field: hrAuth.FieldTenantCode},
		{name: "email", code: "BE", email: "boss@acme.test", field: hrAuth.FieldEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tenant := hrAuth.Tenant{ID: "t2", DisplayName: "Beta", Code: tc.code, CreatedAt: base}
			admin := hrAuth.AccountRecord{ID: "t2-admin", TenantID: "t2", Role: hrAuth.RoleAdmin, Email: tc.email, Active: true, CreatedAt: base}

			err := d.CreateTenant(ctx, tenant, admin)
			var conflict *hrAuth.ConflictError
			if !errors.As(err, &conflict) || conflict.Field != tc.field {
				t.Fatalf("expected conflict on %s, got %v", tc.field, err)
			}
			if !errors.Is(err, hrAuth.ErrConflict) {
				t.Fatalf("expected ErrConflict match, got %v", err)
			}
			if mr.Exists("test:tenant:t2") || mr.Exists("test:account:t2-admin") {
				t.Fatal("rejected signup left records behind")
			}
		})
	}
}

func TestInsertAccountConflictsAndListOrder(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()
	_, _ = seedTenant(t, d, "t1", "AC", "boss@acme.test")

	first := employee("e1", "t1", "ACJADO20240001", "jane@acme.test", base.Add(time.Minute))
	second := employee("e2", "t1", "ACJODO20240002", "", base.Add(2*time.Minute))
	for _, a := range []hrAuth.AccountRecord{first, second} {
		if err := d.InsertAccount(ctx, a); err != nil {
			t.Fatalf("InsertAccount(%s) failed: %v", a.ID, err)
		}
	}

	dup := employee("e3", "t1", "ACJADO20240001", "", base.Add(3*time.Minute))
	var conflict *hrAuth.ConflictError
	if err := d.InsertAccount(ctx, dup); !errors.As(err, &conflict) || conflict.Field != hrAuth.FieldLoginID {
		t.Fatalf("expected login_id conflict, got %v", err)
	}
	dup = employee("e3", "t1", "ACJADO20240003", "jane@acme.test", base.Add(3*time.Minute))
	if err := d.InsertAccount(ctx, dup); !errors.As(err, &conflict) || conflict.Field != hrAuth.FieldEmail {
		t.Fatalf("expected email conflict, got %v", err)
	}

	list, err := d.ListAccounts(ctx, "t1", hrAuth.RoleEmployee)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "e2" || list[1].ID != "e1" {
		t.Fatalf("expected [e2 e1], got %+v", list)
	}

	admins, err := d.ListAccounts(ctx, "t1", hrAuth.RoleAdmin)
	if err != nil || len(admins) != 1 {
		t.Fatalf("expected one admin, got %d (%v)", len(admins), err)
	}
}

func TestUpdatePasswordAndSetActive(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()
	_, _ = seedTenant(t, d, "t1", "AC", "boss@acme.test")
	if err := d.InsertAccount(ctx, employee("e1", "t1", "ACJADO20240001", "", base)); err != nil {
		t.Fatalf("InsertAccount failed: %v", err)
	}

	if err := d.UpdatePassword(ctx, "e1", "new-hash", hrAuth.StateNormal); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	if err := d.SetActive(ctx, "e1", false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	acc, err := d.FindAccountByLoginID(ctx, "ACJADO20240001")
	if err != nil {
		t.Fatalf("FindAccountByLoginID failed: %v", err)
	}
	if acc.PasswordHash != "new-hash" || acc.PasswordState != hrAuth.StateNormal || acc.Active {
		t.Fatalf("unexpected account after patch: %+v", acc)
	}
	if acc.YearOfJoining != 2024 || acc.LoginID != "ACJADO20240001" {
		t.Fatalf("patch clobbered other fields: %+v", acc)
	}

	if err := d.SetActive(ctx, "missing", true); !errors.Is(err, hrAuth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := d.UpdatePassword(ctx, "missing", "x", hrAuth.StateNormal); !errors.Is(err, hrAuth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpgradePasswordHashIsCompareAndSet(t *testing.T) {
	d, _ := newTestDirectory(t)
	ctx := context.Background()
	_, _ = seedTenant(t, d, "t1", "AC", "boss@acme.test")
	if err := d.InsertAccount(ctx, employee("e1", "t1", "ACJADO20240001", "", base)); err != nil {
		t.Fatalf("InsertAccount failed: %v", err)
	}

	swapped, err := d.UpgradePasswordHash(ctx, "e1", "hash", "argon-hash")
	if err != nil || !swapped {
		t.Fatalf("expected swap, got swapped=%v err=%v", swapped, err)
	}
	acc, err := d.GetAccount(ctx, "e1")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acc.PasswordHash != "argon-hash" || acc.PasswordState != hrAuth.StateMustResetPassword {
		t.Fatalf("upgrade touched more than the hash: %+v", acc)
	}

	// A password change in between makes the expected hash stale.
	if err := d.UpdatePassword(ctx, "e1", "changed-hash", hrAuth.StateNormal); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	swapped, err = d.UpgradePasswordHash(ctx, "e1", "argon-hash", "late-upgrade")
	if err != nil || swapped {
		t.Fatalf("expected no swap, got swapped=%v err=%v", swapped, err)
	}
	acc, _ = d.GetAccount(ctx, "e1")
	if acc.PasswordHash != "changed-hash" || acc.PasswordState != hrAuth.StateNormal {
		t.Fatalf("stale upgrade overwrote the change: %+v", acc)
	}

	if _, err := d.UpgradePasswordHash(ctx, "missing", "a", "b"); !errors.Is(err, hrAuth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTenantCode(t *testing.T) {
	d, mr := newTestDirectory(t)
	ctx := context.Background()
	_, _ = seedTenant(t, d, "t1", "AC", "boss@acme.test")
	_, _ = seedTenant(t, d, "t2", "BE", "boss@beta.test")

	if err := d.UpdateTenantCode(ctx, "t1", "AX"); err != nil {
		t.Fatalf("UpdateTenantCode failed: %v", err)
	}
	if mr.Exists("test:code:AC") {
		t.Fatal("old code claim not released")
	}
	got, err := d.FindTenantByCode(ctx, "AX")
	if err != nil || got.ID != "t1" {
		t.Fatalf("expected t1 under AX, got %+v (%v)", got, err)
	}

	var conflict *hrAuth.ConflictError
	if err := d.UpdateTenantCode(ctx, "t1", "BE"); !errors.As(err, &conflict) || conflict.Field != hrAuth.FieldTenantCode {
		t.Fatalf("expected tenant_code conflict, got %v", err)
	}
	if err := d.UpdateTenantCode(ctx, "t1", "AX"); err != nil {
		t.Fatalf("same-code update should be a no-op, got %v", err)
	}
	if err := d.UpdateTenantCode(ctx, "nope", "ZZ"); !errors.Is(err, hrAuth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	tenants, err := d.ListTenants(ctx)
	if err != nil || len(tenants) != 2 {
		t.Fatalf("expected 2 tenants, got %d (%v)", len(tenants), err)
	}
}

func TestBackendFailureIsStoreUnavailable(t *testing.T) {
	d, mr := newTestDirectory(t)
	mr.Close()

	if _, err := d.GetAccount(context.Background(), "e1"); !errors.Is(err, hrAuth.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	err := d.InsertAccount(context.Background(), employee("e1", "t1", "ACJADO20240001", "", base))
	if !errors.Is(err, hrAuth.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
