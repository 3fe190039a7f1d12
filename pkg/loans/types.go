package loans

import "time"

// LoanParameters are the inputs to an EMI calculation. A NaN principal or
// rate is treated as missing.
type LoanParameters struct {
	Principal          float64 `json:"principal"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	TenureMonths       int     `json:"tenureMonths"`
}

// EMIScheduleItem is one installment of a repayment schedule.
type EMIScheduleItem struct {
	EMINumber            int       `json:"emiNumber"`
	DueDate              time.Time `json:"dueDate"`
	EMIAmount            float64   `json:"emiAmount"`
	PrincipalComponent   float64   `json:"principalComponent"`
	InterestComponent    float64   `json:"interestComponent"`
	OutstandingPrincipal float64   `json:"outstandingPrincipal"`
}

// LoanSummary restates the headline figures of a calculation.
type LoanSummary struct {
	Principal             float64 `json:"principal"`
	TotalAmount           float64 `json:"totalAmount"`
	TotalInterest         float64 `json:"totalInterest"`
	EMIAmount             float64 `json:"emiAmount"`
	TenureMonths          int     `json:"tenureMonths"`
	EffectiveInterestRate float64 `json:"effectiveInterestRate"`
}

// EMICalculationResult holds the EMI, the full schedule and its totals.
// TotalAmount and TotalInterest are sums over Schedule.
type EMICalculationResult struct {
	EMIAmount     float64           `json:"emiAmount"`
	TotalAmount   float64           `json:"totalAmount"`
	TotalInterest float64           `json:"totalInterest"`
	Schedule      []EMIScheduleItem `json:"schedule"`
	Summary       LoanSummary       `json:"summary"`
}

// ValidationResult reports blocking errors and advisory warnings for a set
// of loan parameters.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
