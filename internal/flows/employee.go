package flows

import (
	"context"
	"time"
)

// EmployeeRequest is the flow-local employee creation input. Email is already normalized.
type EmployeeRequest struct {
	TenantID      string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	YearOfJoining int
}

// EmployeeResult carries the one-time credentials for a new employee.
type EmployeeResult struct {
	AccountID         string
	LoginID           string
	TemporaryPassword string
	YearOfJoining     int
}

type EmployeeMetrics struct {
	EmployeeCreated     int
	EmployeeConflict    int
	IdentifierCollision int
}

type EmployeeErrors struct {
	EngineNotReady      error
	InvalidRequest      error
	IdentifierCollision error
	Conflict            func(field string) error
}

// EmployeeDeps captures employee creation dependencies.
type EmployeeDeps struct {
	EmployeeRole string

	GetTenantCode     func(context.Context, string) (string, error)
	EmailTaken        func(context.Context, string) (bool, error)
	TemporaryPassword func() (string, error)
	HashPassword      func(string) (string, error)
	GenerateLoginID   func(ctx context.Context, tenantCode, firstName, lastName string, year int, tenantID string) (string, error)
	LoginIDTaken      func(context.Context, string) (bool, error)
	InsertAccount     func(context.Context, NewAccount) error
	IsLoginIDConflict func(error) bool
	NewID             func() string
	Now               func() time.Time

	MetricInc func(int)
	Event     EventFunc

	Metrics EmployeeMetrics
	Errors  EmployeeErrors
}

// RunCreateEmployee issues a login identifier and temporary password for a new employee
// of tenantID. The account starts in the must-reset state. A serial drawn before a
// later failure is not returned to the counter.
func RunCreateEmployee(ctx context.Context, req EmployeeRequest, deps EmployeeDeps) (*EmployeeResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Event == nil {
		deps.Event = noopEvent
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.IsLoginIDConflict == nil {
		deps.IsLoginIDConflict = func(error) bool { return false }
	}
	if deps.GetTenantCode == nil ||
		deps.EmailTaken == nil ||
		deps.TemporaryPassword == nil ||
		deps.HashPassword == nil ||
		deps.GenerateLoginID == nil ||
		deps.LoginIDTaken == nil ||
		deps.InsertAccount == nil ||
		deps.NewID == nil ||
		deps.Errors.Conflict == nil {
		return nil, deps.Errors.EngineNotReady
	}

	if req.TenantID == "" || req.FirstName == "" || req.LastName == "" {
		return nil, deps.Errors.InvalidRequest
	}

	code, err := deps.GetTenantCode(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	if req.Email != "" {
		taken, err := deps.EmailTaken(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			deps.MetricInc(deps.Metrics.EmployeeConflict)
			return nil, deps.Errors.Conflict("email")
		}
	}

	temporary, err := deps.TemporaryPassword()
	if err != nil {
		return nil, err
	}
	hash, err := deps.HashPassword(temporary)
	if err != nil {
		return nil, err
	}

	now := deps.Now().UTC()
	year := req.YearOfJoining
	if year == 0 {
		year = now.Year()
	}

	loginID, err := deps.GenerateLoginID(ctx, code, req.FirstName, req.LastName, year, req.TenantID)
	if err != nil {
		return nil, err
	}

	taken, err := deps.LoginIDTaken(ctx, loginID)
	if err != nil {
		return nil, err
	}
	if taken {
		deps.MetricInc(deps.Metrics.IdentifierCollision)
		deps.Event(ctx, "employee_create", false, "", req.TenantID, deps.Errors.IdentifierCollision)
		return nil, deps.Errors.IdentifierCollision
	}

	account := NewAccount{
		ID:                deps.NewID(),
		TenantID:          req.TenantID,
		Role:              deps.EmployeeRole,
		LoginID:           loginID,
		Email:             req.Email,
		Phone:             req.Phone,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		YearOfJoining:     year,
		PasswordHash:      hash,
		MustResetPassword: true,
		CreatedAt:         now,
	}

	if err := deps.InsertAccount(ctx, account); err != nil {
		if deps.IsLoginIDConflict(err) {
			deps.MetricInc(deps.Metrics.IdentifierCollision)
			deps.Event(ctx, "employee_create", false, "", req.TenantID, deps.Errors.IdentifierCollision)
			return nil, deps.Errors.IdentifierCollision
		}
		deps.Event(ctx, "employee_create", false, "", req.TenantID, err)
		return nil, err
	}

	deps.MetricInc(deps.Metrics.EmployeeCreated)
	deps.Event(ctx, "employee_create", true, account.ID, req.TenantID, nil)
	return &EmployeeResult{
		AccountID:         account.ID,
		LoginID:           loginID,
		TemporaryPassword: temporary,
		YearOfJoining:     year,
	}, nil
}
