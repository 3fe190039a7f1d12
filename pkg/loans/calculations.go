// Package loans implements the EMI amortization engine: validation, EMI and
// schedule generation, affordability sizing, prepayment, simple interest and
// loan numbering.
//
// Every monetary value is rounded to two decimals as soon as it is produced,
// and the final installment absorbs the accumulated rounding so that the
// principal components always sum to the principal.
package loans

import (
	"math"
	"time"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/datetime"
	"github.com/iwvelando/microloan/pkg/mathutil"
)

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateEMIAmount returns the rounded steady-state installment using the
// reducing-balance annuity formula. A zero rate divides the principal evenly.
func CalculateEMIAmount(principal, annualInterestRate float64, tenureMonths int) float64 {
	if tenureMonths <= 0 {
		return 0
	}

	monthlyRate := MonthlyRate(annualInterestRate)
	if monthlyRate == 0 {
		return mathutil.Round(principal / float64(tenureMonths))
	}

	power := math.Pow(1+monthlyRate, float64(tenureMonths))
	return mathutil.Round(principal * monthlyRate * power / (power - 1))
}

// GenerateSchedule lays out tenureMonths installments of emiAmount. Interest
// is charged on the outstanding balance, and the last installment repays the
// exact remaining balance plus its interest, so its amount may differ from
// emiAmount.
func GenerateSchedule(principal, emiAmount, monthlyRate float64, tenureMonths int, startDate time.Time) []EMIScheduleItem {
	if tenureMonths <= 0 {
		return []EMIScheduleItem{}
	}

	schedule := make([]EMIScheduleItem, 0, tenureMonths)
	outstanding := mathutil.Round(principal)

	for emiNumber := 1; emiNumber <= tenureMonths; emiNumber++ {
		interest := mathutil.Round(outstanding * monthlyRate)

		var principalPart, payment float64
		if emiNumber == tenureMonths {
			principalPart = outstanding
			payment = mathutil.Add(principalPart, interest)
			outstanding = 0
		} else {
			principalPart = mathutil.Sub(emiAmount, interest)
			payment = emiAmount
			outstanding = mathutil.Sub(outstanding, principalPart)
		}

		schedule = append(schedule, EMIScheduleItem{
			EMINumber:            emiNumber,
			DueDate:              datetime.AddMonths(startDate, emiNumber),
			EMIAmount:            payment,
			PrincipalComponent:   principalPart,
			InterestComponent:    interest,
			OutstandingPrincipal: outstanding,
		})
	}

	return schedule
}

// CalculateEMI validates params against DefaultBounds and computes the full
// result. A zero startDate means today.
func CalculateEMI(params LoanParameters, startDate time.Time) (EMICalculationResult, error) {
	return defaultEngine.CalculateEMI(params, startDate)
}

func buildResult(principal, emiAmount float64, tenureMonths int, schedule []EMIScheduleItem) EMICalculationResult {
	interests := make([]float64, len(schedule))
	for i, item := range schedule {
		interests[i] = item.InterestComponent
	}
	totalInterest := mathutil.Sum(interests...)
	totalAmount := mathutil.Add(principal, totalInterest)

	return EMICalculationResult{
		EMIAmount:     emiAmount,
		TotalAmount:   totalAmount,
		TotalInterest: totalInterest,
		Schedule:      schedule,
		Summary: LoanSummary{
			Principal:             principal,
			TotalAmount:           totalAmount,
			TotalInterest:         totalInterest,
			EMIAmount:             emiAmount,
			TenureMonths:          tenureMonths,
			EffectiveInterestRate: EffectiveRate(principal, totalInterest, tenureMonths),
		},
	}
}

// EffectiveRate annualizes the interest actually paid over the tenure:
// ((total/principal)^(1/years) - 1) * 100. Non-positive principal or tenure
// yields 0.
func EffectiveRate(principal, totalInterest float64, tenureMonths int) float64 {
	if principal <= 0 || tenureMonths <= 0 {
		return 0
	}
	totalAmount := principal + totalInterest
	if totalAmount <= 0 {
		return 0
	}
	tenureYears := float64(tenureMonths) / constants.MonthsPerYear
	rate := (math.Pow(totalAmount/principal, 1/tenureYears) - 1) * constants.PercentageMultiplier
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return mathutil.Round(rate)
}

// MaxAffordableEMI sizes the installment a borrower can carry from their
// monthly income. A non-positive foir selects constants.DefaultFOIR. The
// result is never negative.
func MaxAffordableEMI(monthlyIncome, existingEMIs, foir float64) float64 {
	if foir <= 0 {
		foir = constants.DefaultFOIR
	}
	return mathutil.Max(0, mathutil.Round(monthlyIncome*foir-existingEMIs))
}

// MaxLoanAmount inverts the EMI formula: the largest principal whose EMI at
// annualRate over tenureMonths equals affordableEMI.
func MaxLoanAmount(affordableEMI, annualRate float64, tenureMonths int) (float64, error) {
	var problems []string
	if math.IsNaN(affordableEMI) || affordableEMI < 0 {
		problems = append(problems, "affordable EMI cannot be negative")
	}
	if math.IsNaN(annualRate) || annualRate < 0 {
		problems = append(problems, "interest rate cannot be negative")
	}
	if tenureMonths <= 0 {
		problems = append(problems, "tenure must be greater than zero")
	}
	if len(problems) > 0 {
		return 0, &ValidationError{Errors: problems}
	}

	monthlyRate := MonthlyRate(annualRate)
	if monthlyRate == 0 {
		return mathutil.Round(affordableEMI * float64(tenureMonths)), nil
	}

	power := math.Pow(1+monthlyRate, float64(tenureMonths))
	return mathutil.Round(affordableEMI * (power - 1) / (monthlyRate * power)), nil
}

// PeriodicInterest is simple interest on an actual/365 basis:
// principal * annualRate/36500 * days.
func PeriodicInterest(principal, annualRate float64, days int) float64 {
	dailyRate := annualRate / (constants.PercentageMultiplier * constants.DaysPerYear)
	return mathutil.Round(principal * dailyRate * float64(days))
}

// PenaltyInterest charges penaltyRate on an overdue amount for overdueDays,
// using the same convention as PeriodicInterest.
func PenaltyInterest(overdueAmount, penaltyRate float64, overdueDays int) float64 {
	return PeriodicInterest(overdueAmount, penaltyRate, overdueDays)
}
