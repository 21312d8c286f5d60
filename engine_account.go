package hrAuth

import (
	"context"
	"strings"

	"github.com/MrEthical07/hrAuth/internal/flows"
)

// CreateEmployee provisions an employee of tenantID: it draws the next serial for the
// joining year, builds the login identifier, and issues a temporary password. The
// account starts in StateMustResetPassword. The plaintext password appears only in the
// returned credentials.
func (e *Engine) CreateEmployee(ctx context.Context, tenantID string, req CreateEmployeeRequest) (*EmployeeCredentials, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.CreateEmployee(ctx, flows.EmployeeRequest{
		TenantID:      tenantID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         NormalizeEmail(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		YearOfJoining: req.YearOfJoining,
	})
	if err != nil {
		return nil, err
	}

	return &EmployeeCredentials{
		AccountID:         res.AccountID,
		LoginID:           res.LoginID,
		TemporaryPassword: res.TemporaryPassword,
		YearOfJoining:     res.YearOfJoining,
	}, nil
}

// ListEmployees returns the employees of tenantID, newest first, without password hashes.
func (e *Engine) ListEmployees(ctx context.Context, tenantID string) ([]EmployeeSummary, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	accounts, err := storeValue(e, ctx, func(ctx context.Context) ([]AccountRecord, error) {
		return e.directory.ListAccounts(ctx, tenantID, RoleEmployee)
	})
	if err != nil {
		return nil, err
	}

	out := make([]EmployeeSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, EmployeeSummary{
			ID:            a.ID,
			LoginID:       a.LoginID,
			Email:         a.Email,
			Phone:         a.Phone,
			FirstName:     a.FirstName,
			LastName:      a.LastName,
			YearOfJoining: a.YearOfJoining,
			PasswordState: a.PasswordState,
			Active:        a.Active,
			CreatedAt:     a.CreatedAt,
		})
	}
	return out, nil
}

// DeactivateAccount blocks every future login of an employee of tenantID. Tokens
// already issued stay valid until they expire.
func (e *Engine) DeactivateAccount(ctx context.Context, tenantID, accountID string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.flows.SetAccountActive(ctx, tenantID, accountID, false)
}

// ActivateAccount reverses DeactivateAccount.
func (e *Engine) ActivateAccount(ctx context.Context, tenantID, accountID string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.flows.SetAccountActive(ctx, tenantID, accountID, true)
}

func flowSignupRequest(req AdminSignupRequest, firstName, lastName string) flows.SignupRequest {
	return flows.SignupRequest{
		CompanyName: strings.TrimSpace(req.CompanyName),
		Email:       NormalizeEmail(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		FirstName:   firstName,
		LastName:    lastName,
		Password:    req.Password,
	}
}
