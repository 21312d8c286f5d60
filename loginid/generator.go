package loginid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/MrEthical07/hrAuth/counter"
)

const (
	nameFragmentLength = 2
	serialWidth        = 4
	maxFixedSerial     = 9999
	namePadding        = 'X'
	defaultFixedPrefix = "OI"
	prefixLength       = 2
)

var (
	// ErrSerialOverflow is returned when a serial does not fit in four digits and
	// [OverflowReject] is configured.
	ErrSerialOverflow = errors.New("login identifier serial overflow")
	// ErrInvalidYear is returned for a year that is not four digits.
	ErrInvalidYear = errors.New("login identifier year must have four digits")
	// ErrInvalidPrefix is returned when the resolved prefix is not two characters of A-Z or 0-9.
	ErrInvalidPrefix = errors.New("login identifier prefix must be two alphanumeric characters")
)

// PrefixMode selects where the identifier prefix comes from.
type PrefixMode uint8

const (
	// PrefixTenantCode uses the tenant's own stored code.
	PrefixTenantCode PrefixMode = iota
	// PrefixFixed uses Config.FixedPrefix for every tenant.
	PrefixFixed
)

// OverflowPolicy decides what happens once a tenant draws more than 9999 serials in a year.
type OverflowPolicy uint8

const (
	// OverflowReject fails generation with ErrSerialOverflow.
	OverflowReject OverflowPolicy = iota
	// OverflowWiden lets the serial grow past four digits.
	OverflowWiden
)

// Config tunes identifier construction.
type Config struct {
	PrefixMode  PrefixMode
	FixedPrefix string
	Overflow    OverflowPolicy
}

// Generator draws serials and formats login identifiers.
type Generator struct {
	counter counter.Store
	config  Config
}

// New returns a Generator backed by store.
func New(store counter.Store, cfg Config) (*Generator, error) {
	if store == nil {
		return nil, errors.New("counter store required")
	}
	if cfg.FixedPrefix == "" {
		cfg.FixedPrefix = defaultFixedPrefix
	}
	if cfg.PrefixMode == PrefixFixed {
		if _, err := normalizePrefix(cfg.FixedPrefix); err != nil {
			return nil, err
		}
	}
	return &Generator{counter: store, config: cfg}, nil
}

// Generate draws the next serial for (tenantID, year) and formats the identifier.
//
// The counter increment is final even if formatting fails afterwards; the serial is then
// skipped.
func (g *Generator) Generate(ctx context.Context, tenantCode, firstName, lastName string, year int, tenantID string) (string, error) {
	prefix := tenantCode
	if g.config.PrefixMode == PrefixFixed {
		prefix = g.config.FixedPrefix
	}
	prefix, err := normalizePrefix(prefix)
	if err != nil {
		return "", err
	}
	if year < 1000 || year > 9999 {
		return "", ErrInvalidYear
	}

	serial, err := g.counter.Increment(ctx, tenantID, year)
	if err != nil {
		return "", err
	}
	if serial > maxFixedSerial && g.config.Overflow == OverflowReject {
		return "", fmt.Errorf("%w: serial %d for year %d", ErrSerialOverflow, serial, year)
	}

	return Format(prefix, firstName, lastName, year, serial), nil
}

// Format is the deterministic part of generation. It does not validate its input beyond
// padding short names.
func Format(prefix, firstName, lastName string, year int, serial int64) string {
	var b strings.Builder
	b.Grow(len(prefix) + 2*nameFragmentLength + 4 + serialWidth)

	b.WriteString(strings.ToUpper(prefix))
	b.WriteString(NameFragment(firstName))
	b.WriteString(NameFragment(lastName))
	b.WriteString(strconv.Itoa(year))

	digits := strconv.FormatInt(serial, 10)
	for i := len(digits); i < serialWidth; i++ {
		b.WriteByte('0')
	}
	b.WriteString(digits)

	return b.String()
}

// NameFragment returns the first two letters of name, upper-cased. Non-letters are
// skipped and a short name is padded with 'X'.
func NameFragment(name string) string {
	out := make([]rune, 0, nameFragmentLength)
	for _, r := range name {
		if len(out) == nameFragmentLength {
			break
		}
		if !unicode.IsLetter(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	for len(out) < nameFragmentLength {
		out = append(out, namePadding)
	}
	return string(out)
}

func normalizePrefix(prefix string) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if len(prefix) != prefixLength {
		return "", ErrInvalidPrefix
	}
	for _, r := range prefix {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", ErrInvalidPrefix
		}
	}
	return prefix, nil
}
