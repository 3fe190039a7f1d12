package loans

import (
	"fmt"
	"math"
	"slices"

	"github.com/iwvelando/microloan/pkg/mathutil"
)

// ApplyPrepayment reduces the outstanding principal of every installment from
// prepaymentMonth onward by prepaymentAmount and returns the updated copy.
//
// When the prepayment covers an installment's outstanding balance the loan is
// closed there. That installment is kept with its outstanding balance set to
// zero, since nothing remains owed after it, and all later installments are
// dropped. Installment amounts and their principal/interest
// split are left as they were; the schedule is not re-amortized.
func ApplyPrepayment(schedule []EMIScheduleItem, prepaymentAmount float64, prepaymentMonth int) ([]EMIScheduleItem, error) {
	if prepaymentMonth < 1 || prepaymentMonth > len(schedule) {
		return nil, fmt.Errorf("%w: month %d, schedule has %d installments",
			ErrPrepaymentMonthOutOfRange, prepaymentMonth, len(schedule))
	}
	if math.IsNaN(prepaymentAmount) || math.IsInf(prepaymentAmount, 0) || prepaymentAmount < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrepaymentAmount, prepaymentAmount)
	}

	updated := slices.Clone(schedule)
	for i := prepaymentMonth - 1; i < len(updated); i++ {
		if prepaymentAmount >= updated[i].OutstandingPrincipal {
			updated[i].OutstandingPrincipal = 0
			return updated[: i+1 : i+1], nil
		}
		updated[i].OutstandingPrincipal = mathutil.Sub(updated[i].OutstandingPrincipal, prepaymentAmount)
	}
	return updated, nil
}
