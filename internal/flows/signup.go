package flows

import (
	"context"
	"time"
)

// SignupRequest is the flow-local admin signup input. Email is already normalized.
type SignupRequest struct {
	CompanyName string
	Email       string
	Phone       string
	FirstName   string
	LastName    string
	Password    string
}

// NewTenant is the tenant row written at signup.
type NewTenant struct {
	ID          string
	DisplayName string
	Code        string
	CreatedAt   time.Time
}

// NewAccount is an account row ready for insertion.
type NewAccount struct {
	ID                string
	TenantID          string
	Role              string
	LoginID           string
	Email             string
	Phone             string
	FirstName         string
	LastName          string
	YearOfJoining     int
	PasswordHash      string
	MustResetPassword bool
	CreatedAt         time.Time
}

// SignupResult is returned after the tenant and its first admin exist.
type SignupResult struct {
	Tenant    NewTenant
	AccountID string
	Tokens    Tokens
}

type SignupMetrics struct {
	SignupSuccess  int
	SignupConflict int
}

type SignupErrors struct {
	EngineNotReady error
	InvalidRequest error
	PasswordPolicy error
	Conflict       func(field string) error
}

// SignupDeps captures admin signup dependencies.
type SignupDeps struct {
	AdminRole        string
	MinPasswordBytes int

	DeriveTenantCode      func(string) (string, error)
	EmailTaken            func(context.Context, string) (bool, error)
	TenantCodeTaken       func(context.Context, string) (bool, error)
	HashPassword          func(string) (string, error)
	CreateTenantWithAdmin func(context.Context, NewTenant, NewAccount) error
	IssueTokens           func(Identity) (Tokens, error)
	NewID                 func() string
	Now                   func() time.Time

	MetricInc func(int)
	Event     EventFunc

	Metrics SignupMetrics
	Errors  SignupErrors
}

// RunSignup creates a tenant and its first admin account in the Normal state and issues
// a token pair. Pre-checks give early, specific conflicts; the directory's unique
// constraints remain authoritative under concurrency.
func RunSignup(ctx context.Context, req SignupRequest, deps SignupDeps) (*SignupResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Event == nil {
		deps.Event = noopEvent
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.DeriveTenantCode == nil ||
		deps.EmailTaken == nil ||
		deps.TenantCodeTaken == nil ||
		deps.HashPassword == nil ||
		deps.CreateTenantWithAdmin == nil ||
		deps.IssueTokens == nil ||
		deps.NewID == nil ||
		deps.Errors.Conflict == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if req.Email == "" || req.CompanyName == "" {
		return nil, deps.Errors.InvalidRequest
	}
	if len(req.Password) < deps.MinPasswordBytes {
		return nil, deps.Errors.PasswordPolicy
	}

	code, err := deps.DeriveTenantCode(req.CompanyName)
	if err != nil {
		return nil, err
	}

	taken, err := deps.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		deps.MetricInc(deps.Metrics.SignupConflict)
		return nil, deps.Errors.Conflict("email")
	}

	taken, err = deps.TenantCodeTaken(ctx, code)
	if err != nil {
		return nil, err
	}
	if taken {
		deps.MetricInc(deps.Metrics.SignupConflict)
		return nil, deps.Errors.Conflict("tenant_code")
	}

	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	req.Password = ""

	now := deps.Now().UTC()
	tenant := NewTenant{
		ID:          deps.NewID(),
		DisplayName: req.CompanyName,
		Code:        code,
		CreatedAt:   now,
	}
	admin := NewAccount{
		ID:            deps.NewID(),
		TenantID:      tenant.ID,
		Role:          deps.AdminRole,
		Email:         req.Email,
		Phone:         req.Phone,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		YearOfJoining: now.Year(),
		PasswordHash:  hash,
		CreatedAt:     now,
	}

	if err := deps.CreateTenantWithAdmin(ctx, tenant, admin); err != nil {
		deps.Event(ctx, "signup", false, "", "", err)
		return nil, err
	}

	tokens, err := deps.IssueTokens(Identity{AccountID: admin.ID, TenantID: tenant.ID, Role: admin.Role})
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.SignupSuccess)
	deps.Event(ctx, "signup", true, admin.ID, tenant.ID, nil)
	return &SignupResult{Tenant: tenant, AccountID: admin.ID, Tokens: tokens}, nil
}
