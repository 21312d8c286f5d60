package loginid

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/hrAuth/counter"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fixedCounter struct {
	next  int64
	err   error
	calls int
}

func (f *fixedCounter) Increment(context.Context, string, int) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.next, nil
}

func (f *fixedCounter) Current(context.Context, string, int) (int64, error) {
	return f.next, nil
}

func TestFormatReferenceIdentifier(t *testing.T) {
	got := Format("OI", "Jane", "Doe", 2024, 1)
	if got != "OIJADO20240001" {
		t.Fatalf("expected OIJADO20240001, got %s", got)
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	a := Format("ab", "maria", "lopez", 2031, 42)
	b := Format("ab", "maria", "lopez", 2031, 42)
	if a != b {
		t.Fatalf("expected deterministic output, got %s and %s", a, b)
	}
	if a != "ABMALO20310042" {
		t.Fatalf("unexpected identifier %s", a)
	}
}

func TestNameFragment(t *testing.T) {
	cases := map[string]string{
		"Jane":    "JA",
		"  doe":   "DO",
		"O'Brien": "OB",
		"Li":      "LI",
		"Q":       "QX",
		"":        "XX",
		"élodie":  "ÉL",
	}
	for in, want := range cases {
		if got := NameFragment(in); got != want {
			t.Fatalf("NameFragment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateUsesTenantCodeByDefault(t *testing.T) {
	c := &fixedCounter{next: 7}
	g, err := New(c, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	id, err := g.Generate(context.Background(), "ac", "Sam", "Kerr", 2025, "tenant-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if id != "ACSAKE20250007" {
		t.Fatalf("unexpected identifier %s", id)
	}
}

func TestGenerateFixedPrefixIgnoresTenantCode(t *testing.T) {
	c := &fixedCounter{next: 1}
	g, err := New(c, Config{PrefixMode: PrefixFixed})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	id, err := g.Generate(context.Background(), "ZZ", "Jane", "Doe", 2024, "tenant-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if id != "OIJADO20240001" {
		t.Fatalf("unexpected identifier %s", id)
	}
}

func TestGenerateOverflowRejected(t *testing.T) {
	c := &fixedCounter{next: 10000}
	g, err := New(c, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := g.Generate(context.Background(), "OI", "Jane", "Doe", 2024, "t1"); !errors.Is(err, ErrSerialOverflow) {
		t.Fatalf("expected ErrSerialOverflow, got %v", err)
	}
}

func TestGenerateOverflowWidened(t *testing.T) {
	c := &fixedCounter{next: 10000}
	g, err := New(c, Config{Overflow: OverflowWiden})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	id, err := g.Generate(context.Background(), "OI", "Jane", "Doe", 2024, "t1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if id != "OIJADO202410000" {
		t.Fatalf("unexpected identifier %s", id)
	}
}

func TestGenerateValidatesBeforeDrawingSerial(t *testing.T) {
	c := &fixedCounter{next: 1}
	g, err := New(c, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := g.Generate(context.Background(), "O", "Jane", "Doe", 2024, "t1"); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("expected ErrInvalidPrefix, got %v", err)
	}
	if _, err := g.Generate(context.Background(), "OI", "Jane", "Doe", 24, "t1"); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
	if c.calls != 0 {
		t.Fatalf("expected no counter draws for invalid input, got %d", c.calls)
	}
}

func TestGenerateSurfacesCounterError(t *testing.T) {
	c := &fixedCounter{err: counter.ErrUnavailable}
	g, err := New(c, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := g.Generate(context.Background(), "OI", "Jane", "Doe", 2024, "t1"); !errors.Is(err, counter.ErrUnavailable) {
		t.Fatalf("expected counter.ErrUnavailable, got %v", err)
	}
}

func TestGenerateSequentialWithRedisCounter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer mr.Close()

	store := counter.NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	g, err := New(store, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := []string{"OIJADO20240001", "OIJADO20240002", "OIJOSM20240003"}
	names := [][2]string{{"Jane", "Doe"}, {"Jade", "Dolan"}, {"John", "Smith"}}
	for i, n := range names {
		id, err := g.Generate(context.Background(), "OI", n[0], n[1], 2024, "tenant-1")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if id != want[i] {
			t.Fatalf("expected %s, got %s", want[i], id)
		}
	}
}

func TestNewRejectsBadFixedPrefix(t *testing.T) {
	if _, err := New(&fixedCounter{}, Config{PrefixMode: PrefixFixed, FixedPrefix: "ABC"}); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("expected ErrInvalidPrefix, got %v", err)
	}
	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("expected nil counter store to be rejected")
	}
}
