package contracts

import (
	"fmt"
	"math"
)

// Money is an amount in cents. Integer cents keep total = base + tax exact.
type Money int64

// Dollars converts a whole-dollar amount to Money
func Dollars(d int64) Money {
	return Money(d * 100)
}

// FromFloat rounds a fractional cent amount half away from zero
func FromFloat(cents float64) Money {
	return Money(math.Round(cents))
}

// Float returns the amount in cents as float64 for rating arithmetic
func (m Money) Float() float64 {
	return float64(m)
}

// String formats as dollars with two decimals
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}
