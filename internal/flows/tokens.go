package flows

import (
	"context"
	"time"
)

// Identity is the claim set embedded in both tokens of a pair.
type Identity struct {
	AccountID string
	TenantID  string
	Role      string
}

// Tokens is a freshly issued access/refresh pair.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenClaims is the flow-local view of verified token claims.
type TokenClaims struct {
	Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshResult carries the replacement access token.
type RefreshResult struct {
	AccessToken string
	Claims      TokenClaims
}

type RefreshMetrics struct {
	RefreshSuccess int
	RefreshFailure int
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	RefreshAccess func(refreshToken string) (string, TokenClaims, error)

	MetricInc func(int)
	Event     EventFunc

	Metrics           RefreshMetrics
	ErrEngineNotReady error
	ErrTokenInvalid   error
}

// RunRefresh exchanges a refresh token for a new access token. The account is not
// re-read; claims are carried over unchanged.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) (*RefreshResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Event == nil {
		deps.Event = noopEvent
	}
	if deps.RefreshAccess == nil {
		return nil, deps.ErrEngineNotReady
	}

	if refreshToken == "" {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		return nil, deps.ErrTokenInvalid
	}

	access, claims, err := deps.RefreshAccess(refreshToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		deps.Event(ctx, "refresh", false, "", "", deps.ErrTokenInvalid)
		return nil, deps.ErrTokenInvalid
	}

	deps.MetricInc(deps.Metrics.RefreshSuccess)
	deps.Event(ctx, "refresh", true, claims.AccountID, claims.TenantID, nil)
	return &RefreshResult{AccessToken: access, Claims: claims}, nil
}

type ValidateMetrics struct {
	ValidateSuccess int
	ValidateFailure int
	ValidateLatency int
}

// ValidateDeps captures access-token validation dependencies.
type ValidateDeps struct {
	VerifyAccess func(accessToken string) (TokenClaims, error)

	Now       func() time.Time
	MetricInc func(int)
	Observe   func(int, time.Duration)

	Metrics           ValidateMetrics
	ErrEngineNotReady error
	ErrTokenInvalid   error
}

// RunValidate verifies an access token. Every failure collapses to ErrTokenInvalid.
func RunValidate(_ context.Context, accessToken string, deps ValidateDeps) (*TokenClaims, error) {
	if deps.VerifyAccess == nil {
		return nil, deps.ErrEngineNotReady
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	start := deps.Now()
	if deps.Observe != nil {
		defer func() { deps.Observe(deps.Metrics.ValidateLatency, deps.Now().Sub(start)) }()
	}

	if accessToken == "" {
		deps.MetricInc(deps.Metrics.ValidateFailure)
		return nil, deps.ErrTokenInvalid
	}

	claims, err := deps.VerifyAccess(accessToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.ValidateFailure)
		return nil, deps.ErrTokenInvalid
	}

	deps.MetricInc(deps.Metrics.ValidateSuccess)
	return &claims, nil
}
