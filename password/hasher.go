package password

import (
	"errors"
	"strings"
)

// ErrUnsupportedHash is returned by [Multi.Verify] for a hash no configured hasher understands.
var ErrUnsupportedHash = errors.New("unsupported password hash format")

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Multi hashes with Primary and verifies with the hasher matching the stored format.
type Multi struct {
	Primary Hasher
	Argon2  *Argon2
	Bcrypt  *Bcrypt
}

// Hash implements [Hasher].
func (m *Multi) Hash(password string) (string, error) {
	if m.Primary == nil {
		return "", errors.New("primary hasher required")
	}
	return m.Primary.Hash(password)
}

// Verify implements [Hasher].
func (m *Multi) Verify(password, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "$"+algorithmID+"$") && m.Argon2 != nil:
		return m.Argon2.Verify(password, encodedHash)
	case isBcryptHash(encodedHash) && m.Bcrypt != nil:
		return m.Bcrypt.Verify(password, encodedHash)
	default:
		return false, ErrUnsupportedHash
	}
}

// NeedsUpgrade reports whether encodedHash was not produced by the primary hasher with
// its current parameters.
func (m *Multi) NeedsUpgrade(encodedHash string) (bool, error) {
	switch p := m.Primary.(type) {
	case *Argon2:
		if !strings.HasPrefix(encodedHash, "$"+algorithmID+"$") {
			return true, nil
		}
		return p.NeedsUpgrade(encodedHash)
	case *Bcrypt:
		if !isBcryptHash(encodedHash) {
			return true, nil
		}
		return p.NeedsUpgrade(encodedHash)
	default:
		return false, nil
	}
}
