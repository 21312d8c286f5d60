package flows

import (
	"context"
	"errors"
)

// LoginRecord is the flow-local account model used by login.
type LoginRecord struct {
	AccountID         string
	TenantID          string
	Role              string
	PasswordHash      string
	MustResetPassword bool
	Active            bool
}

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	Identity
	Tokens
	MustResetPassword bool
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess       int
	LoginFailure       int
	LoginRateLimited   int
	LoginDeactivated   int
	LoginResetRequired int
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	AccountDeactivated error
	LoginRateLimited   error
	NotFound           error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	PasswordUpgradeOnLogin bool

	ClientIPFromContext func(context.Context) string

	CheckLoginRate     func(context.Context, string, string) error
	IncrementLoginRate func(context.Context, string, string) error
	ResetLoginRate     func(context.Context, string, string) error

	FindAccount          func(context.Context, string) (LoginRecord, error)
	VerifyPassword       func(string, string) (bool, error)
	DummyVerify          func(string)
	PasswordNeedsUpgrade func(string) (bool, error)
	HashPassword         func(string) (string, error)
	// UpgradePasswordHash swaps the stored hash only while it still equals the old one.
	UpgradePasswordHash func(ctx context.Context, accountID, oldHash, newHash string) error
	IssueTokens         func(Identity) (Tokens, error)

	MetricInc func(int)
	Event     EventFunc
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Errors  LoginErrors
}

// RunLogin authenticates identifier/password and issues a token pair. An account in the
// must-reset state still receives tokens; the result flags it for the caller to gate.
// Deactivation is reported before the password is compared.
func RunLogin(ctx context.Context, identifier, password string, deps LoginDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Event == nil {
		deps.Event = noopEvent
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.ClientIPFromContext == nil {
		deps.ClientIPFromContext = func(context.Context) string { return "" }
	}
	if deps.FindAccount == nil || deps.VerifyPassword == nil || deps.IssueTokens == nil {
		return nil, deps.Errors.EngineNotReady
	}

	ip := deps.ClientIPFromContext(ctx)

	if deps.CheckLoginRate != nil {
		if err := deps.CheckLoginRate(ctx, identifier, ip); err != nil {
			if errors.Is(err, deps.Errors.LoginRateLimited) {
				deps.MetricInc(deps.Metrics.LoginRateLimited)
				deps.Event(ctx, "login_rate_limited", false, "", "", err)
			}
			return nil, err
		}
	}

	fail := func(accountID, tenantID, reason string) error {
		if deps.IncrementLoginRate != nil {
			if err := deps.IncrementLoginRate(ctx, identifier, ip); err != nil && errors.Is(err, deps.Errors.LoginRateLimited) {
				deps.MetricInc(deps.Metrics.LoginRateLimited)
				deps.Event(ctx, "login_rate_limited", false, accountID, tenantID, err)
				return err
			}
		}
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.Event(ctx, "login_failure:"+reason, false, accountID, tenantID, deps.Errors.InvalidCredentials)
		return deps.Errors.InvalidCredentials
	}

	if identifier == "" || password == "" {
		return nil, fail("", "", "empty_credentials")
	}

	account, err := deps.FindAccount(ctx, identifier)
	if err != nil {
		if errors.Is(err, deps.Errors.NotFound) {
			if deps.DummyVerify != nil {
				deps.DummyVerify(password)
			}
			return nil, fail("", "", "account_not_found")
		}
		return nil, err
	}

	if !account.Active {
		deps.MetricInc(deps.Metrics.LoginDeactivated)
		deps.Event(ctx, "login_failure:deactivated", false, account.AccountID, account.TenantID, deps.Errors.AccountDeactivated)
		return nil, deps.Errors.AccountDeactivated
	}

	ok, err := deps.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		return nil, fail(account.AccountID, account.TenantID, "password_mismatch")
	}

	if deps.PasswordUpgradeOnLogin && deps.PasswordNeedsUpgrade != nil && deps.HashPassword != nil && deps.UpgradePasswordHash != nil {
		if needsUpgrade, err := deps.PasswordNeedsUpgrade(account.PasswordHash); err == nil && needsUpgrade {
			if upgraded, err := deps.HashPassword(password); err == nil {
				if err := deps.UpgradePasswordHash(ctx, account.AccountID, account.PasswordHash, upgraded); err != nil {
					deps.Warn("hrauth: password hash upgrade update failed")
				}
			} else {
				deps.Warn("hrauth: password hash upgrade generation failed")
			}
		}
	}
	password = ""

	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, identifier, ip); err != nil {
			deps.Warn("hrauth: login throttle reset failed")
		}
	}

	id := Identity{AccountID: account.AccountID, TenantID: account.TenantID, Role: account.Role}
	tokens, err := deps.IssueTokens(id)
	if err != nil {
		return nil, err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	if account.MustResetPassword {
		deps.MetricInc(deps.Metrics.LoginResetRequired)
	}
	deps.Event(ctx, "login_success", true, account.AccountID, account.TenantID, nil)

	return &LoginResult{
		Identity:          id,
		Tokens:            tokens,
		MustResetPassword: account.MustResetPassword,
	}, nil
}
