package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "₹0.00"},
		{"Small", 12.5, "₹12.50"},
		{"Thousands", 1000, "₹1,000.00"},
		{"EMI", 8884.88, "₹8,884.88"},
		{"Maximum principal", 10000000, "₹10,000,000.00"},
		{"Negative", -1234.567, "-₹1,234.57"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.amount); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	if got := NumericCurrency(-100000); got != "-100,000.00" {
		t.Errorf("NumericCurrency(-100000) = %q", got)
	}
	if got := NumericCurrency(999.999); got != "1,000.00" {
		t.Errorf("NumericCurrency(999.999) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(12); got != "12.00%" {
		t.Errorf("Percent(12) = %q", got)
	}
	if got := Percent(6.6186); got != "6.62%" {
		t.Errorf("Percent(6.6186) = %q", got)
	}
}
