package shared

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// MaxIDAttempts bounds the collision retries of GenerateUniqueID
const MaxIDAttempts = 30

// Public id prefixes
const (
	SalePrefix       = "VEN"
	PromissoryPrefix = "PROM"
)

const idSpace = 1_000_000

// ErrIDGenerationExhausted is returned when no free id was found within MaxIDAttempts.
// It signals a broken entropy source, not a busy id space.
var ErrIDGenerationExhausted = NewKindError(KindGenerationExhausted, "ID_GENERATION_EXHAUSTED",
	"could not generate a unique public id")

// ExistsFunc reports whether a candidate id is already taken
type ExistsFunc func(ctx context.Context, id string) (bool, error)

type idGenerator struct {
	now      func() time.Time
	entropy  func() (int64, error)
	attempts int
}

// IDOption customizes GenerateUniqueID
type IDOption func(*idGenerator)

// WithIDClock sets the clock used for the year segment
func WithIDClock(now func() time.Time) IDOption {
	return func(g *idGenerator) { g.now = now }
}

// WithIDEntropy replaces the random source for the numeric segment.
// The returned value is reduced modulo 1,000,000.
func WithIDEntropy(fn func() (int64, error)) IDOption {
	return func(g *idGenerator) { g.entropy = fn }
}

func cryptoEntropy() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(idSpace))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// FormatPublicID renders PREFIX-YYYY-NNNNNN. n is reduced into [0, idSpace), so
// negative entropy still yields six digits.
func FormatPublicID(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, ((n%idSpace)+idSpace)%idSpace)
}

// GenerateUniqueID returns a PREFIX-YYYY-NNNNNN id not yet taken according to exists
func GenerateUniqueID(ctx context.Context, prefix string, exists ExistsFunc, opts ...IDOption) (string, error) {
	g := &idGenerator{
		now:      time.Now,
		entropy:  cryptoEntropy,
		attempts: MaxIDAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}

	year := g.now().UTC().Year()
	for i := 0; i < g.attempts; i++ {
		n, err := g.entropy()
		if err != nil {
			return "", fmt.Errorf("id entropy: %w", err)
		}
		candidate := FormatPublicID(prefix, year, n)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check id %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrIDGenerationExhausted
}
