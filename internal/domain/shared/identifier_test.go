package shared

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 1, 30, 12, 0, 0, 0, time.UTC)
}

func TestGenerateUniqueID_Format(t *testing.T) {
	id, err := GenerateUniqueID(context.Background(), SalePrefix,
		func(context.Context, string) (bool, error) { return false, nil },
		WithIDClock(fixedClock))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^VEN-2026-\d{6}$`), id)
}

func TestGenerateUniqueID_RetriesOnCollision(t *testing.T) {
	seq := []int64{42, 42, 7}
	i := 0
	entropy := func() (int64, error) {
		v := seq[i]
		i++
		return v, nil
	}
	taken := map[string]bool{"PROM-2026-000042": true}

	id, err := GenerateUniqueID(context.Background(), PromissoryPrefix,
		func(_ context.Context, id string) (bool, error) { return taken[id], nil },
		WithIDClock(fixedClock), WithIDEntropy(entropy))
	require.NoError(t, err)
	assert.Equal(t, "PROM-2026-000007", id)
	assert.Equal(t, 3, i)
}

func TestGenerateUniqueID_Exhausted(t *testing.T) {
	calls := 0
	_, err := GenerateUniqueID(context.Background(), SalePrefix,
		func(context.Context, string) (bool, error) {
			calls++
			return true, nil
		},
		WithIDClock(fixedClock), WithIDEntropy(func() (int64, error) { return 1, nil }))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationExhausted))
	assert.Equal(t, KindGenerationExhausted, KindOf(err))
	assert.Equal(t, MaxIDAttempts, calls)
}

func TestGenerateUniqueID_ExistsError(t *testing.T) {
	boom := errors.New("db down")
	_, err := GenerateUniqueID(context.Background(), SalePrefix,
		func(context.Context, string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestFormatPublicID(t *testing.T) {
	assert.Equal(t, "VEN-2026-004211", FormatPublicID("VEN", 2026, 4211))
	assert.Equal(t, "VEN-2026-000001", FormatPublicID("VEN", 2026, 1_000_001))
}

func TestDomainError_IsKind(t *testing.T) {
	err := ConflictError("PRODUCT_UNAVAILABLE", "product is not in stock")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, ConflictError("PRODUCT_UNAVAILABLE", "other text")))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestFormatPublicID_ReducesIntoRange(t *testing.T) {
	for n, want := range map[int64]string{
		0:             "VEN-2026-000000",
		42:            "VEN-2026-000042",
		1_000_042:     "VEN-2026-000042",
		-1:            "VEN-2026-999999",
		math.MinInt64: "VEN-2026-224192",
		math.MaxInt64: "VEN-2026-775807",
	} {
		assert.Equal(t, want, FormatPublicID(SalePrefix, 2026, n), "n=%d", n)
	}
}

func TestGenerateUniqueID_NegativeEntropy(t *testing.T) {
	id, err := GenerateUniqueID(context.Background(), SalePrefix,
		func(context.Context, string) (bool, error) { return false, nil },
		WithIDClock(fixedClock), WithIDEntropy(func() (int64, error) { return math.MinInt64, nil }))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^VEN-2026-\d{6}$`), id)
}
