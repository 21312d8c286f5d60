package commands

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	hrAuth "github.com/MrEthical07/hrAuth"
	"github.com/MrEthical07/hrAuth/loginid"
	"github.com/rs/zerolog"
)

// EngineFlags carry the engine settings operators are expected to tune.
type EngineFlags struct {
	AccessSecret  string        `help:"access token signing secret (>= 32 bytes)" env:"HRAUTH_JWT_ACCESS_SECRET"`
	RefreshSecret string        `help:"refresh token signing secret (>= 32 bytes)" env:"HRAUTH_JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `help:"access token lifetime" default:"15m" env:"HRAUTH_JWT_ACCESS_TTL"`
	RefreshTTL    time.Duration `help:"refresh token lifetime" default:"168h" env:"HRAUTH_JWT_REFRESH_TTL"`

	FixedPrefix string `help:"use this two-letter login ID prefix for every tenant instead of the tenant code" env:"HRAUTH_LOGIN_ID_PREFIX"`
	WidenSerial bool   `help:"allow serials above 9999 to widen the login ID instead of failing" env:"HRAUTH_LOGIN_ID_WIDEN"`

	MaxLoginAttempts int           `help:"failed logins before cooldown" default:"5" env:"HRAUTH_MAX_LOGIN_ATTEMPTS"`
	LoginCooldown    time.Duration `help:"login cooldown after too many failures" default:"15m" env:"HRAUTH_LOGIN_COOLDOWN"`
	IPThrottle       bool          `help:"also throttle failed logins per client IP" env:"HRAUTH_IP_THROTTLE"`

	StoreTimeout time.Duration `help:"deadline for each store call" default:"5s" env:"HRAUTH_STORE_TIMEOUT"`
	Histograms   bool          `help:"record token validation latency histograms" env:"HRAUTH_LATENCY_HISTOGRAMS"`
}

func (f *EngineFlags) config(prefix string) hrAuth.Config {
	cfg := hrAuth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte(f.AccessSecret)
	cfg.JWT.RefreshSecret = []byte(f.RefreshSecret)
	cfg.JWT.AccessTTL = f.AccessTTL
	cfg.JWT.RefreshTTL = f.RefreshTTL
	if f.FixedPrefix != "" {
		cfg.LoginID.PrefixMode = loginid.PrefixFixed
		cfg.LoginID.FixedPrefix = f.FixedPrefix
	}
	if f.WidenSerial {
		cfg.LoginID.Overflow = loginid.OverflowWiden
	}
	cfg.Security.MaxLoginAttempts = f.MaxLoginAttempts
	cfg.Security.LoginCooldownDuration = f.LoginCooldown
	cfg.Security.EnableIPThrottle = f.IPThrottle
	cfg.Store.OperationTimeout = f.StoreTimeout
	cfg.Store.RedisPrefix = prefix
	cfg.Metrics.EnableLatencyHistograms = f.Histograms
	return cfg
}

// devSecrets fills missing secrets with random values so --dev starts without setup.
func (f *EngineFlags) devSecrets(log zerolog.Logger) error {
	for _, s := range []*string{&f.AccessSecret, &f.RefreshSecret} {
		if *s != "" {
			continue
		}
		v, err := randomHex(64)
		if err != nil {
			return err
		}
		*s = v
	}
	log.Warn().Msg("Using generated token secrets; tokens will not survive a restart")
	return nil
}

func buildEngine(f *EngineFlags, b *backends, prefix string, log zerolog.Logger) (*hrAuth.Engine, error) {
	if f.AccessSecret == "" || f.RefreshSecret == "" {
		return nil, errors.New("token secrets are required (--access-secret/--refresh-secret or HRAUTH_JWT_ACCESS_SECRET/HRAUTH_JWT_REFRESH_SECRET); run 'hrauth secrets' to generate them")
	}

	return hrAuth.New().
		WithConfig(f.config(prefix)).
		WithRedis(b.redis).
		WithDirectory(b.directory).
		WithCounterStore(b.counter).
		WithLogger(log).
		Build()
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
