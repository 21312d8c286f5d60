package hrAuth

import (
	"errors"
	"time"

	"github.com/MrEthical07/hrAuth/counter"
	"github.com/MrEthical07/hrAuth/internal/flows"
	"github.com/MrEthical07/hrAuth/internal/rate"
	"github.com/MrEthical07/hrAuth/jwt"
	"github.com/MrEthical07/hrAuth/loginid"
	"github.com/MrEthical07/hrAuth/password"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles an [Engine]. A Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory Directory
	counter   counter.Store
	hasher    password.Hasher
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client used for the login throttle and, unless
// WithCounterStore is called, the serial counter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithDirectory sets tenant/account persistence. Required.
func (b *Builder) WithDirectory(d Directory) *Builder {
	b.directory = d
	return b
}

// WithCounterStore overrides the serial counter backend.
func (b *Builder) WithCounterStore(s counter.Store) *Builder {
	b.counter = s
	return b
}

// WithHasher overrides the password hasher derived from Config.Password.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithLogger sets the structured logger. The default discards output.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = l
	return b
}

// WithClock overrides the engine and token clock.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithIDGenerator overrides tenant/account ID generation (UUIDv4 by default).
func (b *Builder) WithIDGenerator(newID func() string) *Builder {
	b.newID = newID
	return b
}

// WithMetricsEnabled toggles in-process metrics.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validation latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. Configuration errors are
// fatal; nothing else is.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.directory == nil {
		return nil, errors.New("directory required")
	}

	// -------- COUNTER --------
	store := b.counter
	if store == nil && b.redis != nil {
		store = counter.NewRedis(b.redis, cfg.Store.RedisPrefix)
	}
	if store == nil {
		if s, ok := b.directory.(counter.Store); ok {
			store = s
		}
	}
	if store == nil {
		return nil, errors.New("counter store required: supply redis, a counter store, or a directory that implements counter.Store")
	}

	if cfg.Security.EnableLoginThrottle && b.redis == nil {
		return nil, errors.New("login throttle requires redis client")
	}

	now := b.now
	if now == nil {
		now = time.Now
	}
	newID := b.newID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}

	ids, err := loginid.New(store, loginid.Config{
		PrefixMode:  cfg.LoginID.PrefixMode,
		FixedPrefix: cfg.LoginID.FixedPrefix,
		Overflow:    cfg.LoginID.Overflow,
	})
	if err != nil {
		return nil, err
	}

	// -------- PASSWORD --------
	hasher := b.hasher
	if hasher == nil {
		hasher, err = newHasher(cfg.Password)
		if err != nil {
			return nil, err
		}
	}

	// -------- TOKENS --------
	jm, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cloneBytes(cfg.JWT.AccessSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
		Now:           now,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		directory:  b.directory,
		counter:    store,
		ids:        ids,
		hasher:     hasher,
		jwtManager: jm,
		metrics:    NewMetrics(cfg.Metrics),
		logger:     b.logger.With().Str("component", "hrauth").Logger(),
		now:        now,
		newID:      newID,
	}

	if cfg.Security.EnableLoginThrottle {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			Prefix:                cfg.Store.RedisPrefix,
			EnableIPThrottle:      cfg.Security.EnableIPThrottle,
			MaxLoginAttempts:      cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration: cfg.Security.LoginCooldownDuration,
		})
	}

	// Equalizes work between unknown identifiers and wrong passwords.
	engine.dummyHash, err = hasher.Hash(newID() + "-unused-credential")
	if err != nil {
		return nil, err
	}

	engine.flows = flows.New(engine.flowDeps())

	b.built = true

	return engine, nil
}

func newHasher(cfg PasswordConfig) (password.Hasher, error) {
	argon, err := password.NewArgon2(password.Config{
		Memory:           cfg.Memory,
		Time:             cfg.Time,
		Parallelism:      cfg.Parallelism,
		SaltLength:       cfg.SaltLength,
		KeyLength:        cfg.KeyLength,
		MaxPasswordBytes: cfg.MaxPasswordBytes,
	})
	if err != nil {
		return nil, err
	}
	bc, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	multi := &password.Multi{Argon2: argon, Bcrypt: bc}
	switch cfg.Algorithm {
	case PasswordBcrypt:
		multi.Primary = bc
	default:
		multi.Primary = argon
	}
	return multi, nil
}
