package checkout

import (
	"bytes"
	"regexp"
	"testing"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{14}-[0-9A-F]{4}$`)

func TestNumberGeneratorFormat(t *testing.T) {
	gen := NewNumberGenerator()
	for i := 0; i < 20; i++ {
		number, err := gen.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !orderNumberPattern.MatchString(number) {
			t.Fatalf("unexpected order number %q", number)
		}
	}
}

func TestNumberGeneratorUsesInjectedSource(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)
	gen := NewNumberGenerator().WithSource(func() time.Time { return at }, bytes.NewReader([]byte{0x0a, 0xbc}))

	number, err := gen.Next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if number != "ORD-20260301090507-0ABC" {
		t.Fatalf("got %q", number)
	}

	if _, err := gen.Next(); err == nil {
		t.Fatalf("expected error once entropy is exhausted")
	}
}
