package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID  = "argon2id"
	minPassBytes = 10
)

// Lower bounds on Argon2id cost, applied to the configuration and to stored hashes alike.
var floor = argonCost{memory: 8 * 1024, time: 1, threads: 1}

const (
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
)

// ErrPasswordTooShort is returned by Hash for passwords under ten bytes.
var ErrPasswordTooShort = errors.New("password must be at least 10 bytes")

// ErrPasswordTooLong is returned when a password exceeds Config.MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds maximum length")

// ErrMalformedHash is wrapped by every error about an unreadable stored Argon2id hash.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// Config holds Argon2id cost parameters. MaxPasswordBytes of 0 disables the upper bound.
type Config struct {
	Memory           uint32
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
}

func (c Config) cost() argonCost {
	return argonCost{memory: c.Memory, time: c.Time, threads: c.Parallelism}
}

// Argon2 is an Argon2id [Hasher]. It is safe for concurrent use.
type Argon2 struct {
	config Config
}

// argonCost is the tunable part of an Argon2id computation, in KiB, passes and lanes.
type argonCost struct {
	memory  uint32
	time    uint32
	threads uint8
}

func (c argonCost) weakerThan(o argonCost) bool {
	return c.memory < o.memory || c.time < o.time || c.threads < o.threads
}

// argonHash is a decoded "$argon2id$v=19$m=..,t=..,p=..$salt$key" string.
type argonHash struct {
	cost argonCost
	salt []byte
	key  []byte
}

func (h argonHash) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version,
		h.cost.memory, h.cost.time, h.cost.threads,
		base64.StdEncoding.EncodeToString(h.salt),
		base64.StdEncoding.EncodeToString(h.key),
	)
}

func (h argonHash) derive(password string) []byte {
	return argon2.IDKey([]byte(password), h.salt, h.cost.time, h.cost.memory, h.cost.threads, uint32(len(h.key)))
}

// NewArgon2 validates cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}

	return &Argon2{config: cfg}, nil
}

// Hash returns a PHC-encoded Argon2id hash with a fresh random salt.
func (a *Argon2) Hash(password string) (string, error) {
	// Raw string bytes are hashed as provided (no Unicode normalization).
	if len(password) < minPassBytes {
		return "", ErrPasswordTooShort
	}
	if err := a.checkLength(password); err != nil {
		return "", err
	}

	h := argonHash{
		cost: a.config.cost(),
		salt: make([]byte, a.config.SaltLength),
		key:  make([]byte, a.config.KeyLength),
	}
	if _, err := io.ReadFull(rand.Reader, h.salt); err != nil {
		return "", err
	}
	h.key = h.derive(password)

	return h.String(), nil
}

// Verify recomputes the hash with the parameters stored in encodedHash and compares in
// constant time.
func (a *Argon2) Verify(password string, encodedHash string) (bool, error) {
	if err := a.checkLength(password); err != nil {
		return false, err
	}

	h, err := decodeArgonHash(encodedHash)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(h.derive(password), h.key) == 1, nil
}

// NeedsUpgrade reports whether encodedHash was produced with weaker parameters than the
// current configuration.
func (a *Argon2) NeedsUpgrade(encodedHash string) (bool, error) {
	h, err := decodeArgonHash(encodedHash)
	if err != nil {
		return false, err
	}

	return h.cost.weakerThan(a.config.cost()) || uint32(len(h.key)) != a.config.KeyLength, nil
}

func (a *Argon2) checkLength(password string) error {
	if a.config.MaxPasswordBytes > 0 && len(password) > a.config.MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedHash, fmt.Sprintf(format, args...))
}

func decodeArgonHash(encoded string) (argonHash, error) {
	var h argonHash

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return h, malformed("want 5 '$'-separated fields")
	}
	if fields[1] != algorithmID {
		return h, malformed("algorithm %q", fields[1])
	}
	if fields[2] != "v="+strconv.Itoa(argon2.Version) {
		return h, malformed("version %q", fields[2])
	}

	cost, err := decodeCost(fields[3])
	if err != nil {
		return h, err
	}
	h.cost = cost

	if h.salt, err = base64.StdEncoding.DecodeString(fields[4]); err != nil || uint32(len(h.salt)) < minSaltLength {
		return h, malformed("salt")
	}
	if h.key, err = base64.StdEncoding.DecodeString(fields[5]); err != nil || len(h.key) == 0 {
		return h, malformed("key")
	}

	return h, nil
}

// decodeCost reads "m=..,t=..,p=..". Each key must appear exactly once, in any order.
func decodeCost(field string) (argonCost, error) {
	var c argonCost
	seen := make(map[string]bool, 3)

	for _, pair := range strings.Split(field, ",") {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || seen[name] {
			return c, malformed("parameter %q", pair)
		}
		seen[name] = true

		bits := 32
		if name == "p" {
			bits = 8
		}
		v, err := strconv.ParseUint(raw, 10, bits)
		if err != nil {
			return c, malformed("parameter %q", pair)
		}

		switch name {
		case "m":
			c.memory = uint32(v)
		case "t":
			c.time = uint32(v)
		case "p":
			c.threads = uint8(v)
		default:
			return c, malformed("parameter %q", pair)
		}
	}

	if len(seen) != 3 {
		return c, malformed("parameters %q", field)
	}
	if c.weakerThan(floor) {
		return c, malformed("cost below minimum in %q", field)
	}
	return c, nil
}

func checkConfig(cfg Config) error {
	checks := []struct {
		bad bool
		msg string
	}{
		{cfg.Memory < floor.memory, "memory must be >= 8192 KB"},
		{cfg.Time < floor.time, "time must be >= 1"},
		{cfg.Parallelism < floor.threads, "parallelism must be >= 1"},
		{cfg.SaltLength < minSaltLength, "salt length must be >= 16"},
		{cfg.KeyLength < minKeyLength, "key length must be >= 16"},
		{cfg.MaxPasswordBytes < 0, "max bytes must be >= 0"},
		{cfg.MaxPasswordBytes > 0 && cfg.MaxPasswordBytes < minPassBytes, "max bytes must be >= 10"},
	}
	for _, c := range checks {
		if c.bad {
			return errors.New("argon2 config: " + c.msg)
		}
	}
	return nil
}
