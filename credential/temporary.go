package credential

import (
	"crypto/rand"
	"io"
	"math/big"
)

const (
	// TemporaryPasswordLength is the fixed length of issued temporary passwords.
	TemporaryPasswordLength = 10

	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower   = "abcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
	symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	all     = upper + lower + digits + symbols
)

// TemporaryPassword returns a random 10-character password holding at least one
// upper-case letter, one lower-case letter, one digit and one symbol.
func TemporaryPassword() (string, error) {
	return temporaryPassword(rand.Reader)
}

func temporaryPassword(src io.Reader) (string, error) {
	buf := make([]byte, 0, TemporaryPasswordLength)

	for _, class := range []string{upper, lower, digits, symbols} {
		c, err := pick(src, class)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	for len(buf) < TemporaryPasswordLength {
		c, err := pick(src, all)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	// Fisher-Yates so the guaranteed classes do not sit at fixed positions.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randIndex(src, i+1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func pick(src io.Reader, alphabet string) (byte, error) {
	i, err := randIndex(src, len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[i], nil
}

func randIndex(src io.Reader, n int) (int, error) {
	v, err := rand.Int(src, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
