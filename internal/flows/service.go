package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Validate.VerifyAccess != nil
}

func (s Service) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	return RunSignup(ctx, req, s.deps.Signup)
}

func (s Service) CreateEmployee(ctx context.Context, req EmployeeRequest) (*EmployeeResult, error) {
	return RunCreateEmployee(ctx, req, s.deps.Employee)
}

func (s Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	return RunLogin(ctx, identifier, password, s.deps.Login)
}

func (s Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	return RunRefresh(ctx, refreshToken, s.deps.Refresh)
}

func (s Service) Validate(ctx context.Context, accessToken string) (*TokenClaims, error) {
	return RunValidate(ctx, accessToken, s.deps.Validate)
}

func (s Service) ChangePassword(ctx context.Context, accountID, current, next string) error {
	return RunChangePassword(ctx, accountID, current, next, s.deps.Password)
}

func (s Service) SetAccountActive(ctx context.Context, tenantID, accountID string, active bool) error {
	return RunSetAccountActive(ctx, tenantID, accountID, active, s.deps.AccountStatus)
}
