// Package testutil provides common utility functions for testing.
package testutil

import (
	"time"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/loans"
	"github.com/iwvelando/microloan/pkg/mathutil"
)

// FixedStart is a stable origination date for reproducible schedules.
var FixedStart = time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

// FindInstallment finds an installment by number in the schedule.
// Returns a pointer to the installment if found, nil otherwise.
func FindInstallment(schedule []loans.EMIScheduleItem, emiNumber int) *loans.EMIScheduleItem {
	for i := range schedule {
		if schedule[i].EMINumber == emiNumber {
			return &schedule[i]
		}
	}
	return nil
}

// SumPrincipal adds the principal components of a schedule.
func SumPrincipal(schedule []loans.EMIScheduleItem) float64 {
	values := make([]float64, len(schedule))
	for i, item := range schedule {
		values[i] = item.PrincipalComponent
	}
	return mathutil.Sum(values...)
}

// Reconciles reports whether a result repays exactly its principal and its
// totals agree with each other.
func Reconciles(result loans.EMICalculationResult) bool {
	if len(result.Schedule) == 0 {
		return false
	}
	last := result.Schedule[len(result.Schedule)-1]
	return last.OutstandingPrincipal == 0 &&
		mathutil.WithinTolerance(SumPrincipal(result.Schedule), result.Summary.Principal, constants.CurrencyTolerance) &&
		result.TotalAmount == mathutil.Add(result.Summary.Principal, result.TotalInterest)
}
