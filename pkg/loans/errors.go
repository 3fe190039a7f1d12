package loans

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidLoanParameters is matched by every *ValidationError.
	ErrInvalidLoanParameters = errors.New("invalid loan parameters")

	// ErrPrepaymentMonthOutOfRange is returned when a prepayment month falls
	// outside the schedule.
	ErrPrepaymentMonthOutOfRange = errors.New("prepayment month out of range")

	// ErrInvalidPrepaymentAmount is returned for negative or non-numeric
	// prepayment amounts.
	ErrInvalidPrepaymentAmount = errors.New("invalid prepayment amount")
)

// ValidationError carries every blocking validation message.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrInvalidLoanParameters.Error()
	}
	return ErrInvalidLoanParameters.Error() + ": " + strings.Join(e.Errors, "; ")
}

// Unwrap lets errors.Is match ErrInvalidLoanParameters.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidLoanParameters
}
