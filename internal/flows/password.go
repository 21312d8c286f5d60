package flows

import "context"

// PasswordRecord is the flow-local account model used by password change.
type PasswordRecord struct {
	AccountID    string
	TenantID     string
	PasswordHash string
	Active       bool
}

type PasswordMetrics struct {
	PasswordChangeSuccess       int
	PasswordChangeInvalidOld    int
	PasswordChangeReuseRejected int
}

type PasswordErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	AccountDeactivated error
	PasswordPolicy     error
	PasswordReuse      error
}

// PasswordDeps captures password change dependencies.
type PasswordDeps struct {
	MinPasswordBytes int
	MaxPasswordBytes int

	GetAccount     func(context.Context, string) (PasswordRecord, error)
	VerifyPassword func(string, string) (bool, error)
	HashPassword   func(string) (string, error)
	// StorePassword writes the new hash and moves the account to the Normal state.
	StorePassword func(context.Context, string, string) error

	MetricInc func(int)
	Event     EventFunc

	Metrics PasswordMetrics
	Errors  PasswordErrors
}

// RunChangePassword verifies current, stores next, and clears the must-reset state. It
// is the only transition out of must-reset.
func RunChangePassword(ctx context.Context, accountID, current, next string, deps PasswordDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Event == nil {
		deps.Event = noopEvent
	}
	if deps.GetAccount == nil || deps.VerifyPassword == nil || deps.HashPassword == nil || deps.StorePassword == nil {
		return deps.Errors.EngineNotReady
	}

	if len(next) < deps.MinPasswordBytes || (deps.MaxPasswordBytes > 0 && len(next) > deps.MaxPasswordBytes) {
		return deps.Errors.PasswordPolicy
	}

	account, err := deps.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.Active {
		return deps.Errors.AccountDeactivated
	}

	ok, err := deps.VerifyPassword(current, account.PasswordHash)
	if err != nil || !ok {
		deps.MetricInc(deps.Metrics.PasswordChangeInvalidOld)
		deps.Event(ctx, "password_change", false, accountID, account.TenantID, deps.Errors.InvalidCredentials)
		return deps.Errors.InvalidCredentials
	}

	if current == next {
		deps.MetricInc(deps.Metrics.PasswordChangeReuseRejected)
		return deps.Errors.PasswordReuse
	}

	hash, err := deps.HashPassword(next)
	if err != nil {
		return err
	}
	if err := deps.StorePassword(ctx, accountID, hash); err != nil {
		return err
	}

	deps.MetricInc(deps.Metrics.PasswordChangeSuccess)
	deps.Event(ctx, "password_change", true, accountID, account.TenantID, nil)
	return nil
}
