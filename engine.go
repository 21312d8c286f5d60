package hrAuth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/hrAuth/counter"
	"github.com/MrEthical07/hrAuth/internal/flows"
	"github.com/MrEthical07/hrAuth/internal/rate"
	"github.com/MrEthical07/hrAuth/jwt"
	"github.com/MrEthical07/hrAuth/loginid"
	"github.com/MrEthical07/hrAuth/password"
	"github.com/rs/zerolog"
)

// Engine runs tenant signup, employee provisioning, login, and token operations.
// It is safe for concurrent use once built.
type Engine struct {
	config      Config
	directory   Directory
	counter     counter.Store
	ids         *loginid.Generator
	hasher      password.Hasher
	dummyHash   string
	jwtManager  *jwt.Manager
	rateLimiter *rate.Limiter
	metrics     *Metrics
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
	flows       flows.Service
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login authenticates an employee login identifier or an email address.
//
// An unknown identifier and a wrong password both return [ErrInvalidCredentials]. A
// deactivated account returns [ErrAccountDeactivated] whatever the password. An account
// awaiting a password change still receives tokens with MustResetPassword set; gating is
// the caller's job (see middleware.RequirePasswordCurrent).
func (e *Engine) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.Login(ctx, strings.TrimSpace(identifier), password)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccountID:         res.AccountID,
		TenantID:          res.TenantID,
		Role:              Role(res.Role),
		Tokens:            tokenPairFromFlow(res.Tokens),
		MustResetPassword: res.MustResetPassword,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token with the same claims
// and a later expiry. The account is not re-read and the refresh token is not rotated.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{AccessToken: res.AccessToken, ExpiresAt: res.Claims.ExpiresAt}, nil
}

// Validate verifies an access token. Any failure returns [ErrTokenInvalid].
func (e *Engine) Validate(ctx context.Context, accessToken string) (*Claims, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	claims, err := e.flows.Validate(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	return &Claims{
		AccountID: claims.AccountID,
		TenantID:  claims.TenantID,
		Role:      Role(claims.Role),
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// ChangePassword verifies current and stores next, moving the account to StateNormal.
// A wrong current password returns [ErrInvalidCredentials].
func (e *Engine) ChangePassword(ctx context.Context, accountID, current, next string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return e.flows.ChangePassword(ctx, accountID, current, next)
}

// AccountState reads the current state of an account from the directory.
func (e *Engine) AccountState(ctx context.Context, accountID string) (AccountStateView, error) {
	if e == nil || !e.flows.Initialized() {
		return AccountStateView{}, ErrEngineNotReady
	}

	account, err := storeValue(e, ctx, func(ctx context.Context) (AccountRecord, error) {
		return e.directory.GetAccount(ctx, accountID)
	})
	if err != nil {
		return AccountStateView{}, err
	}

	return AccountStateView{
		AccountID:     account.ID,
		TenantID:      account.TenantID,
		Role:          account.Role,
		PasswordState: account.PasswordState,
		Active:        account.Active,
	}, nil
}

// storeValue runs fn under the configured store timeout and maps backend failures.
func storeValue[T any](e *Engine, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Store.OperationTimeout)
	defer cancel()

	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, e.mapStoreError(err)
	}
	return v, nil
}

func (e *Engine) storeCall(ctx context.Context, fn func(context.Context) error) error {
	_, err := storeValue(e, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (e *Engine) mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, ErrStoreUnavailable):
		e.metricInc(MetricStoreUnavailable)
		e.logger.Error().Err(err).Msg("store unavailable")
		return err
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, counter.ErrUnavailable),
		errors.Is(err, rate.ErrRedisUnavailable):
		e.metricInc(MetricStoreUnavailable)
		e.logger.Error().Err(err).Msg("store unavailable")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, loginid.ErrSerialOverflow):
		return fmt.Errorf("%w: %v", ErrSerialOverflow, err)
	case errors.Is(err, loginid.ErrInvalidYear),
		errors.Is(err, loginid.ErrInvalidPrefix),
		errors.Is(err, counter.ErrInvalidKey):
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	default:
		return err
	}
}

func (e *Engine) logEvent(ctx context.Context, event string, ok bool, accountID, tenantID string, err error) {
	ev := e.logger.Info()
	if !ok {
		ev = e.logger.Warn()
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if ip := clientIPFromContext(ctx); ip != "" {
		ev = ev.Str("client_ip", ip)
	}
	ev.Str("event", event).
		Bool("ok", ok).
		Str("account_id", accountID).
		Str("tenant_id", tenantID).
		Msg("auth event")
}

func tokenPairFromFlow(t flows.Tokens) TokenPair {
	return TokenPair{
		AccessToken:      t.AccessToken,
		RefreshToken:     t.RefreshToken,
		AccessExpiresAt:  t.AccessExpiresAt,
		RefreshExpiresAt: t.RefreshExpiresAt,
	}
}
