package credential

import (
	"errors"
	"strings"
	"testing"
)

func classify(pw string) (up, lo, di, sy bool) {
	for i := 0; i < len(pw); i++ {
		c := pw[i]
		switch {
		case c >= 'A' && c <= 'Z':
			up = true
		case c >= 'a' && c <= 'z':
			lo = true
		case c >= '0' && c <= '9':
			di = true
		case strings.IndexByte(symbols, c) >= 0:
			sy = true
		}
	}
	return
}

func TestTemporaryPasswordComposition(t *testing.T) {
	for i := 0; i < 10000; i++ {
		pw, err := TemporaryPassword()
		if err != nil {
			t.Fatalf("TemporaryPassword failed: %v", err)
		}
		if len(pw) != TemporaryPasswordLength {
			t.Fatalf("expected length %d, got %d (%q)", TemporaryPasswordLength, len(pw), pw)
		}
		up, lo, di, sy := classify(pw)
		if !up || !lo || !di || !sy {
			t.Fatalf("password %q misses a class: upper=%v lower=%v digit=%v symbol=%v", pw, up, lo, di, sy)
		}
		if strings.IndexFunc(pw, func(r rune) bool { return !strings.ContainsRune(all, r) }) >= 0 {
			t.Fatalf("password %q contains a character outside the alphabet", pw)
		}
	}
}

func TestTemporaryPasswordClassPositionsVary(t *testing.T) {
	// Without the shuffle the first character would always be upper-case.
	firstUpper := 0
	const n = 2000
	for i := 0; i < n; i++ {
		pw, err := TemporaryPassword()
		if err != nil {
			t.Fatalf("TemporaryPassword failed: %v", err)
		}
		if pw[0] >= 'A' && pw[0] <= 'Z' {
			firstUpper++
		}
	}
	if firstUpper == n {
		t.Fatal("expected first character class to vary across passwords")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestTemporaryPasswordEntropyFailure(t *testing.T) {
	if _, err := temporaryPassword(failingReader{}); err == nil {
		t.Fatal("expected error when the random source fails")
	}
}
