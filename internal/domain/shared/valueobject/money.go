package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places kept for every stored amount
const MoneyScale = 2

// RoundMoney rounds an amount to two decimal places, half away from zero.
// Every stored or compared currency value passes through here.
func RoundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyScale)
}

// ParseMoney parses a decimal string and rounds it
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return RoundMoney(d), nil
}

// RoundMoneyPtr rounds an optional amount, keeping nil as nil
func RoundMoneyPtr(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	r := RoundMoney(*v)
	return &r
}

// FormatBRL renders an amount the way reminder messages show it, e.g. "R$ 200.00"
func FormatBRL(v decimal.Decimal) string {
	return "R$ " + RoundMoney(v).StringFixed(MoneyScale)
}

// SplitEvenly divides total into count parts of RoundMoney(total/count).
// The rounding remainder is added to the last part so the parts always sum to total.
func SplitEvenly(total decimal.Decimal, count int) ([]decimal.Decimal, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be >= 1, got %d", count)
	}
	total = RoundMoney(total)
	n := decimal.NewFromInt(int64(count))
	per := RoundMoney(total.Div(n))
	diff := RoundMoney(total.Sub(per.Mul(n)))

	parts := make([]decimal.Decimal, count)
	for i := range parts {
		parts[i] = per
	}
	if !diff.IsZero() {
		parts[count-1] = RoundMoney(per.Add(diff))
	}
	return parts, nil
}
