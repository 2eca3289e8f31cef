package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseOrZero(t *testing.T) {
	cases := map[string]string{
		"":        "0",
		"  ":      "0",
		"abc":     "0",
		"12.5":    "12.5",
		" 100 ":   "100",
		"-4":      "0",
		"0.10":    "0.1",
		"1e2":     "100",
		"12,50":   "0",
		"99.999":  "99.999",
		"NaN":     "0",
		"0000.01": "0.01",

		"1e15":               "1000000000000000",
		"1e16":               "0",
		"1e5000000":          "0",
		"1e2000000000":       "0",
		"1e-40":              "0",
		"2000000000000000.5": "0",
	}
	for input, want := range cases {
		got := ParseOrZero(input)
		assert.Truef(t, got.Equal(decimal.RequireFromString(want)), "ParseOrZero(%q) = %s, want %s", input, got, want)
	}
}

func TestParseOrZeroRejectsOverlongInput(t *testing.T) {
	assert.True(t, ParseOrZero("1"+strings.Repeat("0", 100)).IsZero())
	assert.True(t, ParseOrZero("0."+strings.Repeat("0", 100)+"1").IsZero())
}

func TestCoerce(t *testing.T) {
	assert.True(t, Coerce(decimal.New(-5, 0)).IsZero())
	assert.True(t, Coerce(decimal.New(1, 5000000)).IsZero())
	assert.True(t, Coerce(decimal.New(1, -5000000)).IsZero())
	assert.True(t, Coerce(MaxAmount).Equal(MaxAmount))
	assert.True(t, Coerce(decimal.RequireFromString("19.99")).Equal(decimal.RequireFromString("19.99")))
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]int64{
		"":      0,
		"3":     3,
		" 7 ":   7,
		"2.7":   2,
		"3 pcs": 3,
		"-3":    0,
		"+4":    4,
		"+":     0,
		"x1":    0,
		"١٢":    0,
	}
	for input, want := range cases {
		assert.Equalf(t, want, ParseQuantity(input), "ParseQuantity(%q)", input)
	}
}

func TestFormatRoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "0.00", Format(Zero))
	assert.Equal(t, "1.01", Format(decimal.RequireFromString("1.005")))
	assert.Equal(t, "-1.01", Format(decimal.RequireFromString("-1.005")))
	assert.Equal(t, "250.00", Format(decimal.NewFromInt(250)))
	assert.Equal(t, "-30.00", FormatNegated(decimal.NewFromInt(30)))
}

func TestSumAvoidsFloatDrift(t *testing.T) {
	values := make([]decimal.Decimal, 0, 1000)
	for i := 0; i < 1000; i++ {
		values = append(values, decimal.RequireFromString("0.1"))
	}
	assert.True(t, Sum(values...).Equal(decimal.NewFromInt(100)))
	assert.True(t, Sum().Equal(Zero))
}

func TestLineTotal(t *testing.T) {
	assert.True(t, LineTotal(3, decimal.RequireFromString("19.99")).Equal(decimal.RequireFromString("59.97")))
	assert.True(t, LineTotal(0, decimal.NewFromInt(5)).IsZero())
}
