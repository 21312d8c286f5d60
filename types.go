package hrAuth

import (
	"context"
	"time"
)

// Role is an account's authorization role within its tenant.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// PasswordState is the per-account credential state.
//
// StateMustResetPassword is entered when an admin creates an employee and left only
// through Engine.ChangePassword.
type PasswordState uint8

const (
	StateNormal PasswordState = iota
	StateMustResetPassword
)

func (s PasswordState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateMustResetPassword:
		return "must_reset_password"
	default:
		return "unknown"
	}
}

// Tenant is a company. Code is unique across tenants.
type Tenant struct {
	ID          string
	DisplayName string
	Code        string
	CreatedAt   time.Time
}

// AccountRecord is the persisted account row. LoginID is empty for admins; LoginID and
// Email are unique across tenants when present.
type AccountRecord struct {
	ID            string
	TenantID      string
	Role          Role
	LoginID       string
	Email         string
	Phone         string
	FirstName     string
	LastName      string
	YearOfJoining int
	PasswordHash  string
	PasswordState PasswordState
	Active        bool
	CreatedAt     time.Time
}

// Directory persists tenants and accounts.
//
// Implementations enforce uniqueness on tenant code, login identifier, and email, and
// report violations as [*ConflictError]. Missing rows return [ErrNotFound]; backend
// failures wrap [ErrStoreUnavailable].
type Directory interface {
	// CreateTenant inserts the tenant and its first admin atomically.
	CreateTenant(ctx context.Context, tenant Tenant, admin AccountRecord) error
	GetTenant(ctx context.Context, tenantID string) (Tenant, error)
	FindTenantByCode(ctx context.Context, code string) (Tenant, error)
	ListTenants(ctx context.Context) ([]Tenant, error)
	// UpdateTenantCode replaces a tenant's code, keeping codes unique.
	UpdateTenantCode(ctx context.Context, tenantID, code string) error

	InsertAccount(ctx context.Context, account AccountRecord) error
	GetAccount(ctx context.Context, accountID string) (AccountRecord, error)
	FindAccountByLoginID(ctx context.Context, loginID string) (AccountRecord, error)
	FindAccountByEmail(ctx context.Context, email string) (AccountRecord, error)
	// ListAccounts returns tenant accounts of role, newest first.
	ListAccounts(ctx context.Context, tenantID string, role Role) ([]AccountRecord, error)
	UpdatePassword(ctx context.Context, accountID, passwordHash string, state PasswordState) error
	// UpgradePasswordHash replaces the hash only if it still equals oldHash and leaves the
	// password state alone. It reports whether the swap happened.
	UpgradePasswordHash(ctx context.Context, accountID, oldHash, newHash string) (bool, error)
	SetActive(ctx context.Context, accountID string, active bool) error
}

// AdminSignupRequest registers a company and its first admin.
type AdminSignupRequest struct {
	CompanyName string
	Email       string
	Phone       string
	FirstName   string
	LastName    string
	Password    string
}

// TokenPair is an access/refresh pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// SignupResult is returned by Engine.SignupAdmin.
type SignupResult struct {
	Tenant    Tenant
	AccountID string
	Tokens    TokenPair
}

// CreateEmployeeRequest describes a new employee. YearOfJoining zero means the current year.
type CreateEmployeeRequest struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	YearOfJoining int
}

// EmployeeCredentials holds the generated identifier and the one-time plaintext
// temporary password. The password is not retrievable again.
type EmployeeCredentials struct {
	AccountID         string
	LoginID           string
	TemporaryPassword string
	YearOfJoining     int
}

// LoginResult is returned by Engine.Login.
type LoginResult struct {
	AccountID         string
	TenantID          string
	Role              Role
	Tokens            TokenPair
	MustResetPassword bool
}

// RefreshResult is returned by Engine.Refresh.
type RefreshResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Claims are the verified identity claims of a token.
type Claims struct {
	AccountID string
	TenantID  string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccountStateView is the current state of an account, read from the directory.
type AccountStateView struct {
	AccountID     string
	TenantID      string
	Role          Role
	PasswordState PasswordState
	Active        bool
}

// MustResetPassword reports whether normal access should be withheld.
func (v AccountStateView) MustResetPassword() bool {
	return v.PasswordState == StateMustResetPassword
}

// EmployeeSummary is an account row without its password hash.
type EmployeeSummary struct {
	ID            string
	LoginID       string
	Email         string
	Phone         string
	FirstName     string
	LastName      string
	YearOfJoining int
	PasswordState PasswordState
	Active        bool
	CreatedAt     time.Time
}

// TenantStatus pairs a tenant with counter and code diagnostics for maintenance tooling.
type TenantStatus struct {
	Tenant
	// ExpectedCode is the code derived from the current display name.
	ExpectedCode string
	CodeMatches  bool
	// Serial is the current counter value for the queried year.
	Serial int64
}
