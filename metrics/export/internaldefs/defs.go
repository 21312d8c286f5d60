package internaldefs

import (
	hrAuth "github.com/MrEthical07/hrAuth"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   hrAuth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram.
type HistogramDef struct {
	ID   hrAuth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: hrAuth.MetricSignupSuccess, Name: "hrauth_signup_success_total", Help: "Completed admin signups."},
	{ID: hrAuth.MetricSignupConflict, Name: "hrauth_signup_conflict_total", Help: "Admin signups rejected by an email or tenant code conflict."},
	{ID: hrAuth.MetricEmployeeCreated, Name: "hrauth_employee_created_total", Help: "Employees provisioned."},
	{ID: hrAuth.MetricEmployeeConflict, Name: "hrauth_employee_conflict_total", Help: "Employee provisioning rejected by an email conflict."},
	{ID: hrAuth.MetricIdentifierCollision, Name: "hrauth_identifier_collision_total", Help: "Generated login identifiers that already existed."},
	{ID: hrAuth.MetricLoginSuccess, Name: "hrauth_login_success_total", Help: "Successful logins."},
	{ID: hrAuth.MetricLoginFailure, Name: "hrauth_login_failure_total", Help: "Logins rejected for invalid credentials."},
	{ID: hrAuth.MetricLoginRateLimited, Name: "hrauth_login_rate_limited_total", Help: "Logins rejected by the throttle."},
	{ID: hrAuth.MetricLoginDeactivated, Name: "hrauth_login_deactivated_total", Help: "Logins rejected for deactivated accounts."},
	{ID: hrAuth.MetricLoginResetRequired, Name: "hrauth_login_reset_required_total", Help: "Successful logins of accounts that must reset their password."},
	{ID: hrAuth.MetricRefreshSuccess, Name: "hrauth_refresh_success_total", Help: "Access tokens issued from refresh tokens."},
	{ID: hrAuth.MetricRefreshFailure, Name: "hrauth_refresh_failure_total", Help: "Rejected refresh tokens."},
	{ID: hrAuth.MetricValidateSuccess, Name: "hrauth_validate_success_total", Help: "Accepted access tokens."},
	{ID: hrAuth.MetricValidateFailure, Name: "hrauth_validate_failure_total", Help: "Rejected access tokens."},
	{ID: hrAuth.MetricPasswordChangeSuccess, Name: "hrauth_password_change_success_total", Help: "Successful password changes."},
	{ID: hrAuth.MetricPasswordChangeInvalidOld, Name: "hrauth_password_change_invalid_old_total", Help: "Password changes with a wrong current password."},
	{ID: hrAuth.MetricPasswordChangeReuseRejected, Name: "hrauth_password_change_reuse_rejected_total", Help: "Password changes rejected for reusing the current password."},
	{ID: hrAuth.MetricAccountDeactivated, Name: "hrauth_account_deactivated_total", Help: "Account deactivations."},
	{ID: hrAuth.MetricAccountActivated, Name: "hrauth_account_activated_total", Help: "Account reactivations."},
	{ID: hrAuth.MetricTenantCodeOverride, Name: "hrauth_tenant_code_override_total", Help: "Tenant code overrides."},
	{ID: hrAuth.MetricStoreUnavailable, Name: "hrauth_store_unavailable_total", Help: "Directory or counter calls that failed or timed out."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: hrAuth.MetricValidateLatency, Name: "hrauth_validate_latency_seconds", Help: "Access token validation latency."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The engine keeps one
// more bucket for +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf last, for exporters without native
// histogram bounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
