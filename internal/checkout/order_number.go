package checkout

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"
)

const orderNumberAttempts = 5

// NumberGenerator produces ORD-YYYYmmddHHMMSS-XXXX order numbers, where XXXX is four
// uppercase hex characters read from the random source.
type NumberGenerator struct {
	now    func() time.Time
	random io.Reader
}

func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{now: time.Now, random: rand.Reader}
}

// WithSource swaps the clock and entropy; used by tests to force collisions.
func (g *NumberGenerator) WithSource(now func() time.Time, random io.Reader) *NumberGenerator {
	clone := *g
	if now != nil {
		clone.now = now
	}
	if random != nil {
		clone.random = random
	}
	return &clone
}

func (g *NumberGenerator) Next() (string, error) {
	var suffix [2]byte
	if _, err := io.ReadFull(g.random, suffix[:]); err != nil {
		return "", fmt.Errorf("read order number entropy: %w", err)
	}
	return fmt.Sprintf("ORD-%s-%02X%02X", g.now().UTC().Format("20060102150405"), suffix[0], suffix[1]), nil
}
