// Package format renders monetary amounts for people.
package format

import (
	"fmt"
	"math"
	"strings"
)

// RupeeSymbol prefixes rendered currency amounts.
const RupeeSymbol = "₹"

// Currency returns a currency string with a rupee sign and thousands separators (e.g., "-₹1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-" + RupeeSymbol + formatted
	}
	return RupeeSymbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	formatted := formatPositiveCurrency(math.Abs(amount))
	return sign + formatted
}

// Percent renders a percentage with two decimals, e.g. "12.50%".
func Percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
