package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/format"
	"github.com/iwvelando/microloan/pkg/mathutil"
)

// Bounds holds the limits loan parameters are validated against.
type Bounds struct {
	MinPrincipal    float64 `json:"minPrincipal"`
	MaxPrincipal    float64 `json:"maxPrincipal"`
	MinInterestRate float64 `json:"minInterestRate"`
	MaxInterestRate float64 `json:"maxInterestRate"`
	MinTenure       int     `json:"minTenure"`
	MaxTenure       int     `json:"maxTenure"`
}

// DefaultBounds returns the standard microloan limits.
func DefaultBounds() Bounds {
	return Bounds{
		MinPrincipal:    constants.MinPrincipal,
		MaxPrincipal:    constants.MaxPrincipal,
		MinInterestRate: constants.MinInterestRate,
		MaxInterestRate: constants.MaxInterestRate,
		MinTenure:       constants.MinTenure,
		MaxTenure:       constants.MaxTenure,
	}
}

// Validate checks b for internal consistency.
func (b Bounds) Validate() error {
	switch {
	case b.MinPrincipal <= 0:
		return fmt.Errorf("minimum principal must be positive, got %.2f", b.MinPrincipal)
	case b.MaxPrincipal < b.MinPrincipal:
		return fmt.Errorf("maximum principal %.2f is below minimum %.2f", b.MaxPrincipal, b.MinPrincipal)
	case b.MinInterestRate < 0:
		return fmt.Errorf("minimum interest rate cannot be negative, got %.2f", b.MinInterestRate)
	case b.MaxInterestRate < b.MinInterestRate:
		return fmt.Errorf("maximum interest rate %.2f is below minimum %.2f", b.MaxInterestRate, b.MinInterestRate)
	case b.MinTenure < 1:
		return fmt.Errorf("minimum tenure must be at least 1 month, got %d", b.MinTenure)
	case b.MaxTenure < b.MinTenure:
		return fmt.Errorf("maximum tenure %d is below minimum %d", b.MaxTenure, b.MinTenure)
	}
	return nil
}

// ValidateLoanParameters validates params against DefaultBounds.
func ValidateLoanParameters(params LoanParameters) ValidationResult {
	return validate(params, DefaultBounds())
}

func validate(params LoanParameters, bounds Bounds) ValidationResult {
	result := ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	principal := params.Principal
	switch {
	case math.IsNaN(principal) || principal <= 0:
		result.Errors = append(result.Errors, "principal is required and must be greater than zero")
	case principal < bounds.MinPrincipal:
		result.Errors = append(result.Errors, fmt.Sprintf("principal must be at least %s (minimum loan amount)",
			format.Currency(bounds.MinPrincipal)))
	case principal > bounds.MaxPrincipal:
		result.Errors = append(result.Errors, fmt.Sprintf("principal cannot exceed %s (maximum loan amount)",
			format.Currency(bounds.MaxPrincipal)))
	}

	rate := params.AnnualInterestRate
	switch {
	case math.IsNaN(rate) || rate < 0:
		result.Errors = append(result.Errors, "interest rate is required and cannot be negative")
	case rate > bounds.MaxInterestRate:
		result.Errors = append(result.Errors, fmt.Sprintf("interest rate cannot exceed %s per annum",
			format.Percent(bounds.MaxInterestRate)))
	case rate > 0 && rate < bounds.MinInterestRate:
		result.Warnings = append(result.Warnings, fmt.Sprintf("interest rate of %s is very low, please verify",
			format.Percent(rate)))
	}

	tenure := params.TenureMonths
	switch {
	case tenure <= 0:
		result.Errors = append(result.Errors, "tenure is required and must be greater than zero")
	case tenure < bounds.MinTenure:
		result.Errors = append(result.Errors, fmt.Sprintf("tenure must be at least %d months", bounds.MinTenure))
	case tenure > bounds.MaxTenure:
		result.Errors = append(result.Errors, fmt.Sprintf("tenure cannot exceed %d months", bounds.MaxTenure))
	}

	if len(result.Errors) == 0 {
		emi := CalculateEMIAmount(principal, rate, tenure)
		totalInterest := mathutil.Round(emi*float64(tenure) - principal)
		if totalInterest > principal {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"total interest of %s exceeds the principal, consider reducing tenure or rate",
				format.Currency(totalInterest)))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
