package flows

import "context"

// StatusRecord is the flow-local account model used by activation changes.
type StatusRecord struct {
	AccountID string
	TenantID  string
	Role      string
	Active    bool
}

type AccountStatusMetrics struct {
	AccountDeactivated int
	AccountActivated   int
}

type AccountStatusErrors struct {
	EngineNotReady error
	InvalidRequest error
	NotFound       error
}

// AccountStatusDeps captures activation dependencies.
type AccountStatusDeps struct {
	// MutableRole is the only role whose activation may be toggled.
	MutableRole string

	GetAccount func(context.Context, string) (StatusRecord, error)
	SetActive  func(context.Context, string, bool) error

	MetricInc func(int)
	Event     EventFunc

	Metrics AccountStatusMetrics
	Errors  AccountStatusErrors
}

// RunSetAccountActive toggles the active flag of an account belonging to tenantID.
// Accounts of another tenant are reported as not found.
func RunSetAccountActive(ctx context.Context, tenantID, accountID string, active bool, deps AccountStatusDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Event == nil {
		deps.Event = noopEvent
	}
	if deps.GetAccount == nil || deps.SetActive == nil {
		return deps.Errors.EngineNotReady
	}
	if tenantID == "" || accountID == "" {
		return deps.Errors.InvalidRequest
	}

	account, err := deps.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.TenantID != tenantID {
		return deps.Errors.NotFound
	}
	if deps.MutableRole != "" && account.Role != deps.MutableRole {
		return deps.Errors.InvalidRequest
	}
	if account.Active == active {
		return nil
	}

	if err := deps.SetActive(ctx, accountID, active); err != nil {
		return err
	}

	if active {
		deps.MetricInc(deps.Metrics.AccountActivated)
	} else {
		deps.MetricInc(deps.Metrics.AccountDeactivated)
	}
	deps.Event(ctx, "account_status", true, accountID, tenantID, nil)
	return nil
}
