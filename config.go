package hrAuth

import (
	"errors"
	"time"

	"github.com/MrEthical07/hrAuth/jwt"
	"github.com/MrEthical07/hrAuth/loginid"
	"golang.org/x/crypto/bcrypt"
)

// Config is the complete engine configuration. Start from [DefaultConfig].
type Config struct {
	Tenant   TenantConfig
	LoginID  LoginIDConfig
	JWT      JWTConfig
	Password PasswordConfig
	Store    StoreConfig
	Security SecurityConfig
	Metrics  MetricsConfig
}

/*
====================================
TENANT CONFIG
====================================
*/

// TenantConfig controls tenant code derivation.
type TenantConfig struct {
	// CodeLength is the number of leading display-name characters forming the code.
	CodeLength int
}

/*
====================================
LOGIN ID CONFIG
====================================
*/

// LoginIDConfig controls identifier generation. See package loginid.
type LoginIDConfig struct {
	PrefixMode  loginid.PrefixMode
	FixedPrefix string
	Overflow    loginid.OverflowPolicy
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds token signing secrets and lifetimes.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordAlgorithm selects the hasher used for new hashes.
type PasswordAlgorithm string

const (
	PasswordArgon2id PasswordAlgorithm = "argon2id"
	PasswordBcrypt   PasswordAlgorithm = "bcrypt"
)

// PasswordConfig holds hashing parameters and the length policy.
type PasswordConfig struct {
	Algorithm PasswordAlgorithm

	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	BcryptCost int

	MinPasswordBytes int
	MaxPasswordBytes int
	UpgradeOnLogin   bool
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig bounds every directory and counter call.
type StoreConfig struct {
	OperationTimeout time.Duration
	RedisPrefix      string
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls login throttling.
type SecurityConfig struct {
	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

// MetricsConfig toggles in-process metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns production defaults. JWT secrets are left empty and must be set.
func DefaultConfig() Config {
	return Config{
		Tenant: TenantConfig{
			CodeLength: 2,
		},
		LoginID: LoginIDConfig{
			PrefixMode:  loginid.PrefixTenantCode,
			FixedPrefix: "OI",
			Overflow:    loginid.OverflowReject,
		},
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "hrauth",
		},
		Password: PasswordConfig{
			Algorithm:        PasswordArgon2id,
			Memory:           65536,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			BcryptCost:       10,
			MinPasswordBytes: 10,
			MaxPasswordBytes: 72,
			UpgradeOnLogin:   true,
		},
		Store: StoreConfig{
			OperationTimeout: 5 * time.Second,
			RedisPrefix:      "hr",
		},
		Security: SecurityConfig{
			EnableLoginThrottle:   true,
			EnableIPThrottle:      false,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error. Build calls it.
func (c *Config) Validate() error {
	// Tenant
	if c.Tenant.CodeLength < 1 || c.Tenant.CodeLength > 8 {
		return errors.New("Tenant CodeLength must be between 1 and 8")
	}

	// Login ID
	switch c.LoginID.PrefixMode {
	case loginid.PrefixTenantCode:
		if c.Tenant.CodeLength != 2 {
			return errors.New("LoginID PrefixTenantCode requires Tenant CodeLength 2")
		}
	case loginid.PrefixFixed:
		if len(c.LoginID.FixedPrefix) != 2 {
			return errors.New("LoginID FixedPrefix must be 2 characters")
		}
	default:
		return errors.New("LoginID PrefixMode is invalid")
	}
	if c.LoginID.Overflow != loginid.OverflowReject && c.LoginID.Overflow != loginid.OverflowWiden {
		return errors.New("LoginID Overflow is invalid")
	}

	// JWT
	if len(c.JWT.AccessSecret) < jwt.MinSecretBytes {
		return errors.New("JWT AccessSecret must be at least 32 bytes")
	}
	if len(c.JWT.RefreshSecret) < jwt.MinSecretBytes {
		return errors.New("JWT RefreshSecret must be at least 32 bytes")
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("JWT AccessSecret and RefreshSecret must differ")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must exceed AccessTTL")
	}

	// Password
	switch c.Password.Algorithm {
	case PasswordArgon2id:
		if c.Password.Memory < 8*1024 {
			return errors.New("Password Memory must be >= 8192 KB")
		}
		if c.Password.Time < 1 {
			return errors.New("Password Time must be >= 1")
		}
		if c.Password.Parallelism < 1 {
			return errors.New("Password Parallelism must be >= 1")
		}
		if c.Password.SaltLength < 16 {
			return errors.New("Password SaltLength must be >= 16")
		}
		if c.Password.KeyLength < 16 {
			return errors.New("Password KeyLength must be >= 16")
		}
	case PasswordBcrypt:
		if c.Password.MaxPasswordBytes > 72 {
			return errors.New("Password MaxPasswordBytes must be <= 72 with bcrypt")
		}
	default:
		return errors.New("Password Algorithm must be 'argon2id' or 'bcrypt'")
	}
	if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
		return errors.New("Password BcryptCost is out of range")
	}
	if c.Password.MinPasswordBytes < 10 {
		return errors.New("Password MinPasswordBytes must be >= 10")
	}
	if c.Password.MaxPasswordBytes < c.Password.MinPasswordBytes {
		return errors.New("Password MaxPasswordBytes must be >= MinPasswordBytes")
	}

	// Store
	if c.Store.OperationTimeout <= 0 {
		return errors.New("Store OperationTimeout must be > 0")
	}
	if c.Store.RedisPrefix == "" {
		return errors.New("Store RedisPrefix must not be empty")
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("Security MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("Security LoginCooldownDuration must be > 0")
		}
	}

	return nil
}
