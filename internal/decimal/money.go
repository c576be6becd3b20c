package decimal

import (
	"github.com/shopspring/decimal"
)

// Places is the number of fraction digits every stored amount is rounded to
const Places int32 = 6

// Zero is decimal zero
var Zero = decimal.Zero

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round rounds to Places using half-to-even tie breaking
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Places)
}

// Mul multiplies two decimals, rounds to Places
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// Add adds two decimals, rounds to Places
func Add(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Add(b))
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// SumRounded sums a slice of decimals and rounds the result to Places
func SumRounded(values []decimal.Decimal) decimal.Decimal {
	return Round(Sum(values))
}
