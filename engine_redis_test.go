package hrAuth_test

import (
	"context"
	"errors"
	"testing"

	hrAuth "github.com/MrEthical07/hrAuth"
	storeredis "github.com/MrEthical07/hrAuth/store/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func TestEngineOverRedisDirectory(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := hrAuth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("access-secret-for-tests-0123456789abcdef")
	cfg.JWT.RefreshSecret = []byte("refresh-secret-for-tests-0123456789abcdef")
	cfg.Password.Algorithm = hrAuth.PasswordBcrypt
	cfg.Password.BcryptCost = bcrypt.MinCost

	engine, err := hrAuth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithDirectory(storeredis.New(rdb, cfg.Store.RedisPrefix)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ctx := context.Background()

	signup, err := engine.SignupAdmin(ctx, hrAuth.AdminSignupRequest{
		CompanyName: "Orbit Industries",
		Email:       "owner@orbit.test",
		FirstName:   "Olive",
		LastName:    "Owner",
		Password:    "owner-password-1",
	})
	if err != nil {
		t.Fatalf("SignupAdmin failed: %v", err)
	}
	if signup.Tenant.Code != "OR" {
		t.Fatalf("unexpected tenant code %q", signup.Tenant.Code)
	}

	_, err = engine.SignupAdmin(ctx, hrAuth.AdminSignupRequest{CompanyName: "Orchid", Email: "o@orchid.test", Password: "owner-password-1"})
	if !errors.Is(err, hrAuth.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	creds, err := engine.CreateEmployee(ctx, signup.Tenant.ID, hrAuth.CreateEmployeeRequest{
		FirstName:     "Sam",
		LastName:      "Lee",
		Email:         "sam@orbit.test",
		YearOfJoining: 2025,
	})
	if err != nil {
		t.Fatalf("CreateEmployee failed: %v", err)
	}
	if creds.LoginID != "ORSALE20250001" {
		t.Fatalf("unexpected login id %q", creds.LoginID)
	}

	login, err := engine.Login(ctx, creds.LoginID, creds.TemporaryPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !login.MustResetPassword {
		t.Fatal("expected must-reset on first login")
	}

	if err := engine.ChangePassword(ctx, creds.AccountID, creds.TemporaryPassword, "sam-own-password"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	login, err = engine.Login(ctx, "sam@orbit.test", "sam-own-password")
	if err != nil {
		t.Fatalf("Login by email failed: %v", err)
	}
	if login.MustResetPassword {
		t.Fatal("must-reset survived password change")
	}

	employees, err := engine.ListEmployees(ctx, signup.Tenant.ID)
	if err != nil {
		t.Fatalf("ListEmployees failed: %v", err)
	}
	if len(employees) != 1 || employees[0].LoginID != creds.LoginID || employees[0].PasswordState != hrAuth.StateNormal {
		t.Fatalf("unexpected employees: %+v", employees)
	}

	statuses, err := engine.ListTenants(ctx, 2025)
	if err != nil || len(statuses) != 1 || statuses[0].Serial != 1 {
		t.Fatalf("unexpected tenant status: %+v (%v)", statuses, err)
	}
}
