// Package money holds the decimal arithmetic and input coercion used for
// invoice amounts.
//
// Amounts are accumulated exactly with shopspring/decimal and rounded only
// when formatted for display, so long item lists never drift.
package money

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fraction digits shown for currency values.
const DisplayPlaces = 2

// Limits on accepted amounts.
const (
	maxInputLen = 64
	maxExponent = 15
	minExponent = -32
)

var (
	// Zero is the zero amount.
	Zero = decimal.Zero

	// MaxAmount is the largest accepted amount, 10^15.
	MaxAmount = decimal.New(1, maxExponent)
)

// ParseOrZero converts user input into a non-negative amount.
// Anything that does not parse, any negative value, and any value outside
// the currency range becomes zero.
func ParseOrZero(input string) decimal.Decimal {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || len(trimmed) > maxInputLen {
		return Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Zero
	}
	return Coerce(d)
}

// ParseQuantity converts user input into a non-negative whole quantity.
// Only the leading integer part is used, so "2.7" yields 2 and "3 pcs" yields 3.
func ParseQuantity(input string) int64 {
	trimmed := strings.TrimSpace(input)
	end := 0
	for i, r := range trimmed {
		if i == 0 && (r == '+' || r == '-') {
			end = i + 1
			continue
		}
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			break
		}
		end = i + 1
	}
	n, err := strconv.ParseInt(trimmed[:end], 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Coerce applies the input rules to an already decoded amount: negative
// values and values outside the currency range become zero.
func Coerce(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() || !InRange(d) {
		return Zero
	}
	return d
}

// InRange reports whether |d| is at most MaxAmount with no more than
// -minExponent fraction digits. The exponent is checked before any
// arithmetic, so "1e2000000000" is rejected without being expanded.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxExponent || exp < minExponent {
		return false
	}
	return d.Abs().LessThanOrEqual(MaxAmount)
}

// LineTotal is quantity × unit price, unrounded.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

// Sum adds all values exactly. An empty list sums to zero.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Format renders a value with two decimals, rounding half away from zero.
func Format(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}

// FormatNegated renders a deduction, e.g. 30 becomes "-30.00".
func FormatNegated(d decimal.Decimal) string {
	return "-" + Format(d)
}

// FormatQuantity renders a whole quantity.
func FormatQuantity(q int64) string {
	return strconv.FormatInt(q, 10)
}
