package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	hrAuth "github.com/MrEthical07/hrAuth"
	storeredis "github.com/MrEthical07/hrAuth/store/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func newTestEngine(t *testing.T) *hrAuth.Engine {
	t.Helper()
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
		WithDirectory(storeredis.New(rdb, "mw")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if _, found := ClaimsFromContext(r.Context()); !found {
		http.Error(w, "claims missing", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
})

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuard(t *testing.T) {
	engine := newTestEngine(t)
	res, err := engine.SignupAdmin(context.Background(), hrAuth.AdminSignupRequest{
		CompanyName: "Acme", Email: "boss@acme.test", Password: "admin-password-1",
	})
	if err != nil {
		t.Fatalf("SignupAdmin failed: %v", err)
	}

	h := Guard(engine)(okHandler)
	if rec := serve(h, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}
	if rec := serve(h, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
	if rec := serve(h, res.Tokens.RefreshToken); rec.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token: expected 401, got %d", rec.Code)
	}
	if rec := serve(h, res.Tokens.AccessToken); rec.Code != http.StatusNoContent {
		t.Fatalf("valid token: expected 204, got %d", rec.Code)
	}
	if rec := serve(Guard(nil)(okHandler), res.Tokens.AccessToken); rec.Code != http.StatusUnauthorized {
		t.Fatalf("nil engine: expected 401, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(hrAuth.RoleAdmin)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no claims: expected 401, got %d", rec.Code)
	}

	for role, want := range map[hrAuth.Role]int{
		hrAuth.RoleAdmin:    http.StatusNoContent,
		hrAuth.RoleEmployee: http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithClaims(req.Context(), &hrAuth.Claims{AccountID: "a", Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("role %s: expected %d, got %d", role, want, rec.Code)
		}
	}
}

func TestRequireStrictGatesMustReset(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	admin, err := engine.SignupAdmin(ctx, hrAuth.AdminSignupRequest{
		CompanyName: "Acme", Email: "boss@acme.test", Password: "admin-password-1",
	})
	if err != nil {
		t.Fatalf("SignupAdmin failed: %v", err)
	}
	creds, err := engine.CreateEmployee(ctx, admin.Tenant.ID, hrAuth.CreateEmployeeRequest{FirstName: "Jane", LastName: "Doe"})
	if err != nil {
		t.Fatalf("CreateEmployee failed: %v", err)
	}
	login, err := engine.Login(ctx, creds.LoginID, creds.TemporaryPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	h := RequireStrict(engine)(okHandler)
	rec := serve(h, login.Tokens.AccessToken)
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "password_reset_required") {
		t.Fatalf("expected 403 password_reset_required, got %d %s", rec.Code, rec.Body)
	}

	if err := engine.ChangePassword(ctx, creds.AccountID, creds.TemporaryPassword, "jane-own-password"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if rec := serve(h, login.Tokens.AccessToken); rec.Code != http.StatusNoContent {
		t.Fatalf("after change: expected 204, got %d", rec.Code)
	}

	if err := engine.DeactivateAccount(ctx, admin.Tenant.ID, creds.AccountID); err != nil {
		t.Fatalf("DeactivateAccount failed: %v", err)
	}
	rec = serve(h, login.Tokens.AccessToken)
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "account_deactivated") {
		t.Fatalf("expected 403 account_deactivated, got %d %s", rec.Code, rec.Body)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"Bearer abc":  true,
		"bearer abc":  true,
		"Bearer ":     false,
		"Basic abc":   false,
		"":            false,
		"Bearerabc":   false,
		"Bearer  abc": true,
	}
	for header, want := range cases {
		if _, got := bearerToken(header); got != want {
			t.Fatalf("%q: got %v, want %v", header, got, want)
		}
	}
}
