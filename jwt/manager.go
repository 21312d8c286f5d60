package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the shortest accepted signing secret.
const MinSecretBytes = 32

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// ErrInvalid is wrapped by every verification failure: malformed, forged, expired, or of
// the wrong kind.
var ErrInvalid = errors.New("token invalid")

// Kind distinguishes access from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Config holds signing secrets and lifetimes. Zero TTLs select 15m and 7d.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration

	// Now overrides the clock used for issuing and validating. Nil means time.Now.
	Now func() time.Time
}

// Identity is the set of claims shared by both tokens of a pair.
type Identity struct {
	AccountID string
	TenantID  string
	Role      string
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	TenantID string `json:"tid"`
	Role     string `json:"role"`
	Use      Kind   `json:"use"`
	jwt.RegisteredClaims
}

// AccountID returns the subject claim.
func (c *Claims) AccountID() string { return c.Subject }

// Identity returns the identity claims carried by the token.
func (c *Claims) Identity() Identity {
	return Identity{AccountID: c.Subject, TenantID: c.TenantID, Role: c.Role}
}

// Pair is an access/refresh token pair issued together.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Manager signs and verifies tokens. It holds no mutable state and is safe for
// concurrent use.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a Manager. Missing or short secrets are rejected.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) < MinSecretBytes {
		return nil, fmt.Errorf("access secret must be at least %d bytes", MinSecretBytes)
	}
	if len(cfg.RefreshSecret) < MinSecretBytes {
		return nil, fmt.Errorf("refresh secret must be at least %d bytes", MinSecretBytes)
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// Issue signs a fresh access/refresh pair for id.
func (m *Manager) Issue(id Identity) (Pair, error) {
	if id.AccountID == "" || id.TenantID == "" {
		return Pair{}, errors.New("identity requires account and tenant")
	}
	now := m.config.Now()

	access, accessExp, err := m.sign(id, KindAccess, now)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := m.sign(id, KindRefresh, now)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify checks signature, expiry, and kind. Any failure wraps [ErrInvalid].
func (m *Manager) Verify(token string, kind Kind) (*Claims, error) {
	secret, _, err := m.keyFor(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.config.Now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.Use != kind {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalid, kind)
	}
	if claims.Subject == "" || claims.TenantID == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrInvalid)
	}

	return claims, nil
}

// Refresh verifies a refresh token and returns a new access token with the same identity
// and a fresh expiry. The refresh token itself is not rotated.
//
// Token times have one-second precision, so the new expiry is pushed to at least one
// second past the expiry of the access token issued with the refresh token.
func (m *Manager) Refresh(refreshToken string) (string, *Claims, error) {
	rc, err := m.Verify(refreshToken, KindRefresh)
	if err != nil {
		return "", nil, err
	}

	now := m.config.Now()
	ttl := m.config.AccessTTL
	if rc.IssuedAt != nil {
		if floor := rc.IssuedAt.Time.Add(ceilSecond(ttl) + time.Second); now.Add(ttl).Before(floor) {
			ttl = floor.Sub(now)
		}
	}

	claims := m.claims(rc.Identity(), KindAccess, now, ttl)
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.AccessSecret)
	if err != nil {
		return "", nil, err
	}
	return access, &claims, nil
}

func ceilSecond(d time.Duration) time.Duration {
	if t := d.Truncate(time.Second); t != d {
		return t + time.Second
	}
	return d
}

func (m *Manager) sign(id Identity, kind Kind, now time.Time) (string, time.Time, error) {
	secret, ttl, err := m.keyFor(kind)
	if err != nil {
		return "", time.Time{}, err
	}
	claims := m.claims(id, kind, now, ttl)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (m *Manager) claims(id Identity, kind Kind, now time.Time, ttl time.Duration) Claims {
	return Claims{
		TenantID: id.TenantID,
		Role:     id.Role,
		Use:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.AccountID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func (m *Manager) keyFor(kind Kind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return m.config.AccessSecret, m.config.AccessTTL, nil
	case KindRefresh:
		return m.config.RefreshSecret, m.config.RefreshTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token kind %q", kind)
	}
}
