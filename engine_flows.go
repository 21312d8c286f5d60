package hrAuth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/hrAuth/credential"
	"github.com/MrEthical07/hrAuth/internal/flows"
	"github.com/MrEthical07/hrAuth/internal/rate"
	"github.com/MrEthical07/hrAuth/jwt"
)

type upgradeChecker interface {
	NeedsUpgrade(string) (bool, error)
}

func (e *Engine) flowDeps() flows.Deps {
	metricInc := func(id int) { e.metricInc(MetricID(id)) }
	event := flows.EventFunc(e.logEvent)
	warn := func(format string, args ...any) { e.logger.Warn().Msgf(format, args...) }
	conflict := func(field string) error { return NewConflict(field) }

	deps := flows.Deps{
		Signup: flows.SignupDeps{
			AdminRole:        string(RoleAdmin),
			MinPasswordBytes: e.config.Password.MinPasswordBytes,
			DeriveTenantCode: func(name string) (string, error) {
				return DeriveTenantCode(name, e.config.Tenant.CodeLength)
			},
			EmailTaken:      e.emailTaken,
			TenantCodeTaken: e.tenantCodeTaken,
			HashPassword:    e.hashPassword,
			CreateTenantWithAdmin: func(ctx context.Context, t flows.NewTenant, a flows.NewAccount) error {
				return e.storeCall(ctx, func(ctx context.Context) error {
					return e.directory.CreateTenant(ctx, Tenant(t), accountFromFlow(a))
				})
			},
			IssueTokens: e.issueTokens,
			NewID:       e.newID,
			Now:         e.now,
			MetricInc:   metricInc,
			Event:       event,
			Metrics: flows.SignupMetrics{
				SignupSuccess:  int(MetricSignupSuccess),
				SignupConflict: int(MetricSignupConflict),
			},
			Errors: flows.SignupErrors{
				EngineNotReady: ErrEngineNotReady,
				InvalidRequest: ErrInvalidRequest,
				PasswordPolicy: ErrPasswordPolicy,
				Conflict:       conflict,
			},
		},
		Employee: flows.EmployeeDeps{
			EmployeeRole: string(RoleEmployee),
			GetTenantCode: func(ctx context.Context, tenantID string) (string, error) {
				t, err := storeValue(e, ctx, func(ctx context.Context) (Tenant, error) {
					return e.directory.GetTenant(ctx, tenantID)
				})
				return t.Code, err
			},
			EmailTaken:        e.emailTaken,
			TemporaryPassword: credential.TemporaryPassword,
			HashPassword:      e.hashPassword,
			GenerateLoginID: func(ctx context.Context, tenantCode, firstName, lastName string, year int, tenantID string) (string, error) {
				return storeValue(e, ctx, func(ctx context.Context) (string, error) {
					return e.ids.Generate(ctx, tenantCode, firstName, lastName, year, tenantID)
				})
			},
			LoginIDTaken: func(ctx context.Context, loginID string) (bool, error) {
				return e.exists(ctx, func(ctx context.Context) (AccountRecord, error) {
					return e.directory.FindAccountByLoginID(ctx, loginID)
				})
			},
			InsertAccount: func(ctx context.Context, a flows.NewAccount) error {
				return e.storeCall(ctx, func(ctx context.Context) error {
					return e.directory.InsertAccount(ctx, accountFromFlow(a))
				})
			},
			IsLoginIDConflict: func(err error) bool {
				var ce *ConflictError
				return errors.As(err, &ce) && ce.Field == FieldLoginID
			},
			NewID:     e.newID,
			Now:       e.now,
			MetricInc: metricInc,
			Event:     event,
			Metrics: flows.EmployeeMetrics{
				EmployeeCreated:     int(MetricEmployeeCreated),
				EmployeeConflict:    int(MetricEmployeeConflict),
				IdentifierCollision: int(MetricIdentifierCollision),
			},
			Errors: flows.EmployeeErrors{
				EngineNotReady:      ErrEngineNotReady,
				InvalidRequest:      ErrInvalidRequest,
				IdentifierCollision: ErrIdentifierCollision,
				Conflict:            conflict,
			},
		},
		Login: flows.LoginDeps{
			PasswordUpgradeOnLogin: e.config.Password.UpgradeOnLogin,
			ClientIPFromContext:    clientIPFromContext,
			FindAccount:            e.findLoginAccount,
			VerifyPassword:         e.hasher.Verify,
			DummyVerify: func(pw string) {
				_, _ = e.hasher.Verify(pw, e.dummyHash)
			},
			HashPassword: e.hashPassword,
			UpgradePasswordHash: func(ctx context.Context, accountID, oldHash, newHash string) error {
				swapped, err := storeValue(e, ctx, func(ctx context.Context) (bool, error) {
					return e.directory.UpgradePasswordHash(ctx, accountID, oldHash, newHash)
				})
				if err == nil && !swapped {
					e.logger.Debug().Str("account_id", accountID).Msg("password changed during login, hash upgrade skipped")
				}
				return err
			},
			IssueTokens: e.issueTokens,
			MetricInc:   metricInc,
			Event:       event,
			Warn:        warn,
			Metrics: flows.LoginMetrics{
				LoginSuccess:       int(MetricLoginSuccess),
				LoginFailure:       int(MetricLoginFailure),
				LoginRateLimited:   int(MetricLoginRateLimited),
				LoginDeactivated:   int(MetricLoginDeactivated),
				LoginResetRequired: int(MetricLoginResetRequired),
			},
			Errors: flows.LoginErrors{
				EngineNotReady:     ErrEngineNotReady,
				InvalidCredentials: ErrInvalidCredentials,
				AccountDeactivated: ErrAccountDeactivated,
				LoginRateLimited:   ErrLoginRateLimited,
				NotFound:           ErrNotFound,
			},
		},
		Refresh: flows.RefreshDeps{
			RefreshAccess: func(refreshToken string) (string, flows.TokenClaims, error) {
				access, claims, err := e.jwtManager.Refresh(refreshToken)
				if err != nil {
					return "", flows.TokenClaims{}, err
				}
				return access, tokenClaimsToFlow(claims), nil
			},
			MetricInc: metricInc,
			Event:     event,
			Metrics: flows.RefreshMetrics{
				RefreshSuccess: int(MetricRefreshSuccess),
				RefreshFailure: int(MetricRefreshFailure),
			},
			ErrEngineNotReady: ErrEngineNotReady,
			ErrTokenInvalid:   ErrTokenInvalid,
		},
		Validate: flows.ValidateDeps{
			VerifyAccess: func(token string) (flows.TokenClaims, error) {
				claims, err := e.jwtManager.Verify(token, jwt.KindAccess)
				if err != nil {
					return flows.TokenClaims{}, err
				}
				return tokenClaimsToFlow(claims), nil
			},
			Now:       e.now,
			MetricInc: metricInc,
			Observe: func(id int, d time.Duration) {
				e.metrics.Observe(MetricID(id), d)
			},
			Metrics: flows.ValidateMetrics{
				ValidateSuccess: int(MetricValidateSuccess),
				ValidateFailure: int(MetricValidateFailure),
				ValidateLatency: int(MetricValidateLatency),
			},
			ErrEngineNotReady: ErrEngineNotReady,
			ErrTokenInvalid:   ErrTokenInvalid,
		},
		Password: flows.PasswordDeps{
			MinPasswordBytes: e.config.Password.MinPasswordBytes,
			MaxPasswordBytes: e.config.Password.MaxPasswordBytes,
			GetAccount: func(ctx context.Context, accountID string) (flows.PasswordRecord, error) {
				a, err := storeValue(e, ctx, func(ctx context.Context) (AccountRecord, error) {
					return e.directory.GetAccount(ctx, accountID)
				})
				if err != nil {
					return flows.PasswordRecord{}, err
				}
				return flows.PasswordRecord{
					AccountID:    a.ID,
					TenantID:     a.TenantID,
					PasswordHash: a.PasswordHash,
					Active:       a.Active,
				}, nil
			},
			VerifyPassword: e.hasher.Verify,
			HashPassword:   e.hashPassword,
			StorePassword: func(ctx context.Context, accountID, hash string) error {
				return e.storeCall(ctx, func(ctx context.Context) error {
					return e.directory.UpdatePassword(ctx, accountID, hash, StateNormal)
				})
			},
			MetricInc: metricInc,
			Event:     event,
			Metrics: flows.PasswordMetrics{
				PasswordChangeSuccess:       int(MetricPasswordChangeSuccess),
				PasswordChangeInvalidOld:    int(MetricPasswordChangeInvalidOld),
				PasswordChangeReuseRejected: int(MetricPasswordChangeReuseRejected),
			},
			Errors: flows.PasswordErrors{
				EngineNotReady:     ErrEngineNotReady,
				InvalidCredentials: ErrInvalidCredentials,
				AccountDeactivated: ErrAccountDeactivated,
				PasswordPolicy:     ErrPasswordPolicy,
				PasswordReuse:      ErrPasswordReuse,
			},
		},
		AccountStatus: flows.AccountStatusDeps{
			MutableRole: string(RoleEmployee),
			GetAccount: func(ctx context.Context, accountID string) (flows.StatusRecord, error) {
				a, err := storeValue(e, ctx, func(ctx context.Context) (AccountRecord, error) {
					return e.directory.GetAccount(ctx, accountID)
				})
				if err != nil {
					return flows.StatusRecord{}, err
				}
				return flows.StatusRecord{
					AccountID: a.ID,
					TenantID:  a.TenantID,
					Role:      string(a.Role),
					Active:    a.Active,
				}, nil
			},
			SetActive: func(ctx context.Context, accountID string, active bool) error {
				return e.storeCall(ctx, func(ctx context.Context) error {
					return e.directory.SetActive(ctx, accountID, active)
				})
			},
			MetricInc: metricInc,
			Event:     event,
			Metrics: flows.AccountStatusMetrics{
				AccountDeactivated: int(MetricAccountDeactivated),
				AccountActivated:   int(MetricAccountActivated),
			},
			Errors: flows.AccountStatusErrors{
				EngineNotReady: ErrEngineNotReady,
				InvalidRequest: ErrInvalidRequest,
				NotFound:       ErrNotFound,
			},
		},
	}

	if u, ok := e.hasher.(upgradeChecker); ok {
		deps.Login.PasswordNeedsUpgrade = u.NeedsUpgrade
	}

	if e.rateLimiter != nil {
		deps.Login.CheckLoginRate = func(ctx context.Context, identifier, ip string) error {
			return e.mapRateError(e.rateLimiter.CheckLogin(ctx, identifier, ip))
		}
		deps.Login.IncrementLoginRate = func(ctx context.Context, identifier, ip string) error {
			return e.mapRateError(e.rateLimiter.IncrementLogin(ctx, identifier, ip))
		}
		deps.Login.ResetLoginRate = func(ctx context.Context, identifier, ip string) error {
			return e.mapRateError(e.rateLimiter.ResetLogin(ctx, identifier, ip))
		}
	}

	return deps
}

// findLoginAccount resolves an identifier as an upper-cased login ID first, then as a
// lower-cased email. Identifiers containing '@' are only tried as email.
func (e *Engine) findLoginAccount(ctx context.Context, identifier string) (flows.LoginRecord, error) {
	var (
		account AccountRecord
		err     error
	)
	if !strings.Contains(identifier, "@") {
		account, err = storeValue(e, ctx, func(ctx context.Context) (AccountRecord, error) {
			return e.directory.FindAccountByLoginID(ctx, strings.ToUpper(identifier))
		})
	} else {
		err = ErrNotFound
	}
	if errors.Is(err, ErrNotFound) {
		account, err = storeValue(e, ctx, func(ctx context.Context) (AccountRecord, error) {
			return e.directory.FindAccountByEmail(ctx, NormalizeEmail(identifier))
		})
	}
	if err != nil {
		return flows.LoginRecord{}, err
	}

	return flows.LoginRecord{
		AccountID:         account.ID,
		TenantID:          account.TenantID,
		Role:              string(account.Role),
		PasswordHash:      account.PasswordHash,
		MustResetPassword: account.PasswordState == StateMustResetPassword,
		Active:            account.Active,
	}, nil
}

func (e *Engine) exists(ctx context.Context, find func(context.Context) (AccountRecord, error)) (bool, error) {
	_, err := storeValue(e, ctx, find)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (e *Engine) emailTaken(ctx context.Context, email string) (bool, error) {
	return e.exists(ctx, func(ctx context.Context) (AccountRecord, error) {
		return e.directory.FindAccountByEmail(ctx, email)
	})
}

func (e *Engine) tenantCodeTaken(ctx context.Context, code string) (bool, error) {
	_, err := storeValue(e, ctx, func(ctx context.Context) (Tenant, error) {
		return e.directory.FindTenantByCode(ctx, code)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (e *Engine) hashPassword(pw string) (string, error) {
	hash, err := e.hasher.Hash(pw)
	if err != nil {
		return "", errors.Join(ErrPasswordPolicy, err)
	}
	return hash, nil
}

func (e *Engine) issueTokens(id flows.Identity) (flows.Tokens, error) {
	pair, err := e.jwtManager.Issue(jwt.Identity{
		AccountID: id.AccountID,
		TenantID:  id.TenantID,
		Role:      id.Role,
	})
	if err != nil {
		return flows.Tokens{}, err
	}
	return flows.Tokens{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}, nil
}

func (e *Engine) mapRateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		return ErrLoginRateLimited
	default:
		return e.mapStoreError(err)
	}
}

func tokenClaimsToFlow(c *jwt.Claims) flows.TokenClaims {
	out := flows.TokenClaims{Identity: flows.Identity{
		AccountID: c.AccountID(),
		TenantID:  c.TenantID,
		Role:      c.Role,
	}}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}

func accountFromFlow(a flows.NewAccount) AccountRecord {
	state := StateNormal
	if a.MustResetPassword {
		state = StateMustResetPassword
	}
	return AccountRecord{
		ID:            a.ID,
		TenantID:      a.TenantID,
		Role:          Role(a.Role),
		LoginID:       a.LoginID,
		Email:         a.Email,
		Phone:         a.Phone,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		YearOfJoining: a.YearOfJoining,
		PasswordHash:  a.PasswordHash,
		PasswordState: state,
		Active:        true,
		CreatedAt:     a.CreatedAt,
	}
}
