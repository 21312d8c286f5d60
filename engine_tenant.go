package hrAuth

import (
	"context"
	"sort"
	"strings"
)

// DeriveTenantCode returns the first n ASCII letters or digits of displayName,
// upper-cased. Other characters are skipped. A name with fewer than n such characters
// is rejected with [ErrInvalidRequest].
func DeriveTenantCode(displayName string, n int) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(displayName) {
		if b.Len() == n {
			break
		}
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	if b.Len() < n {
		return "", ErrInvalidRequest
	}
	return b.String(), nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupAdmin registers a tenant and its first admin account, which starts in
// StateNormal, and returns a token pair for it. An email or tenant code already in use
// returns a [*ConflictError].
func (e *Engine) SignupAdmin(ctx context.Context, req AdminSignupRequest) (*SignupResult, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		firstName = "Admin"
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		lastName = "User"
	}

	res, err := e.flows.Signup(ctx, flowSignupRequest(req, firstName, lastName))
	if err != nil {
		return nil, err
	}

	return &SignupResult{
		Tenant:    Tenant(res.Tenant),
		AccountID: res.AccountID,
		Tokens:    tokenPairFromFlow(res.Tokens),
	}, nil
}

// OverrideTenantCode replaces a tenant's code. This is an out-of-band maintenance
// operation; existing login identifiers keep their original prefix.
func (e *Engine) OverrideTenantCode(ctx context.Context, tenantID, code string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}

	normalized, err := DeriveTenantCode(code, e.config.Tenant.CodeLength)
	if err != nil || len(strings.TrimSpace(code)) != e.config.Tenant.CodeLength {
		return ErrInvalidRequest
	}

	if err := e.storeCall(ctx, func(ctx context.Context) error {
		return e.directory.UpdateTenantCode(ctx, tenantID, normalized)
	}); err != nil {
		return err
	}

	e.metricInc(MetricTenantCodeOverride)
	e.logger.Info().Str("tenant_id", tenantID).Str("code", normalized).Msg("tenant code overridden")
	return nil
}

// ListTenants reports every tenant with its expected code and the counter value for
// year, ordered by code.
func (e *Engine) ListTenants(ctx context.Context, year int) ([]TenantStatus, error) {
	if e == nil || !e.flows.Initialized() {
		return nil, ErrEngineNotReady
	}

	tenants, err := storeValue(e, ctx, e.directory.ListTenants)
	if err != nil {
		return nil, err
	}

	out := make([]TenantStatus, 0, len(tenants))
	for _, t := range tenants {
		expected, _ := DeriveTenantCode(t.DisplayName, e.config.Tenant.CodeLength)
		serial, err := storeValue(e, ctx, func(ctx context.Context) (int64, error) {
			return e.counter.Current(ctx, t.ID, year)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, TenantStatus{
			Tenant:       t,
			ExpectedCode: expected,
			CodeMatches:  expected == t.Code,
			Serial:       serial,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
