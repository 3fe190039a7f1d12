// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero. The value is converted through its shortest
// decimal representation, so 1.005 rounds to 1.01 rather than 1.00.
func Round(val float64) float64 {
	if !finite(val) {
		return val
	}
	return decimal.NewFromFloat(val).Round(constants.DecimalPlaces).InexactFloat64()
}

// Add returns a+b rounded to two decimals without binary drift.
func Add(a, b float64) float64 {
	return Sum(a, b)
}

// Sub returns a-b rounded to two decimals without binary drift.
func Sub(a, b float64) float64 {
	if !finite(a) || !finite(b) {
		return a - b
	}
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).
		Round(constants.DecimalPlaces).InexactFloat64()
}

// Sum adds all values exactly and rounds the result to two decimals.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if !finite(v) {
			return math.NaN()
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(constants.DecimalPlaces).InexactFloat64()
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func finite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
