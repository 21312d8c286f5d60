package flows

import "context"

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Signup        SignupDeps
	Employee      EmployeeDeps
	Login         LoginDeps
	Refresh       RefreshDeps
	Validate      ValidateDeps
	Password      PasswordDeps
	AccountStatus AccountStatusDeps
}

// EventFunc receives one structured outcome per flow step worth logging.
type EventFunc func(ctx context.Context, event string, ok bool, accountID, tenantID string, err error)

func noopEvent(context.Context, string, bool, string, string, error) {}

func noopMetric(int) {}

func noopWarn(string, ...any) {}
