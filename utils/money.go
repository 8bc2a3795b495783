package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySign is appended to every formatted price
const CurrencySign = "₽"

// FormatPrice formats an amount in rubles as a string like "1 299 ₽" or "1 299.50 ₽".
// Uses a space as thousands separator and drops zero kopecks.
func FormatPrice(amount float64) string {
	return FormatDecimal(decimal.NewFromFloat(amount))
}

// FormatDecimal is FormatPrice for an exact decimal amount
func FormatDecimal(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	// Pre-allocate: digits + separators + sign + fraction
	b.Grow(len(intPart) + len(intPart)/3 + 8)
	if neg {
		b.WriteString("-")
	}

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(' ')
		b.WriteString(intPart[i : i+3])
	}

	if frac != "" && frac != "00" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	b.WriteString(" ")
	b.WriteString(CurrencySign)
	return b.String()
}
