package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10", "10.00"},
		{"10.005", "10.01"},
		{"10.004", "10.00"},
		{"0.125", "0.13"},
		{"-0.125", "-0.13"},
		{"266.666666", "266.67"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundMoney(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestParseMoney(t *testing.T) {
	d, err := ParseMoney("1000.456")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("1000.46")))

	_, err = ParseMoney("abc")
	assert.Error(t, err)
}

func TestRoundMoneyPtr(t *testing.T) {
	assert.Nil(t, RoundMoneyPtr(nil))

	v := decimal.RequireFromString("1.239")
	got := RoundMoneyPtr(&v)
	require.NotNil(t, got)
	assert.Equal(t, "1.24", got.StringFixed(2))
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 200.00", FormatBRL(decimal.NewFromInt(200)))
	assert.Equal(t, "R$ 33.33", FormatBRL(decimal.RequireFromString("33.333")))
}

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name  string
		total string
		count int
		want  []string
	}{
		{"even split", "800", 4, []string{"200.00", "200.00", "200.00", "200.00"}},
		{"remainder up on last", "100", 3, []string{"33.33", "33.33", "33.34"}},
		{"remainder down on last", "200", 3, []string{"66.67", "66.67", "66.66"}},
		{"single part", "99.99", 1, []string{"99.99"}},
		{"zero total", "0", 2, []string{"0.00", "0.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := SplitEvenly(decimal.RequireFromString(tt.total), tt.count)
			require.NoError(t, err)
			require.Len(t, parts, tt.count)

			sum := decimal.Zero
			for i, p := range parts {
				assert.Equal(t, tt.want[i], p.StringFixed(2))
				sum = sum.Add(p)
			}
			assert.True(t, sum.Equal(RoundMoney(decimal.RequireFromString(tt.total))))
		})
	}

	t.Run("rejects zero count", func(t *testing.T) {
		_, err := SplitEvenly(decimal.NewFromInt(10), 0)
		assert.Error(t, err)
	})
}

func TestSplitEvenly_SumAlwaysReconciles(t *testing.T) {
	for cents := int64(1); cents <= 2000; cents += 37 {
		total := decimal.New(cents, -2)
		for count := 1; count <= 13; count++ {
			parts, err := SplitEvenly(total, count)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, p := range parts {
				sum = sum.Add(p)
			}
			require.Truef(t, sum.Equal(total), "total=%s count=%d sum=%s", total, count, sum)
		}
	}
}
