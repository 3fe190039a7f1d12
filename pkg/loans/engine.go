package loans

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/mathutil"
	"go.uber.org/zap"
)

// Engine runs the amortization operations against a fixed set of bounds. It
// holds no per-call state and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	bounds Bounds
	now    func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithBounds replaces DefaultBounds.
func WithBounds(bounds Bounds) Option {
	return func(e *Engine) {
		e.bounds = bounds
	}
}

// WithClock sets the clock used for default start dates and loan numbers.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRandSource makes loan number suffixes reproducible.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.rand = rand.New(src)
		}
	}
}

var defaultEngine = NewEngine(nil)

// NewEngine creates a new engine instance
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger: logger,
		bounds: DefaultBounds(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bounds returns the limits the engine validates against.
func (e *Engine) Bounds() Bounds {
	return e.bounds
}

// Now reads the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Validate checks params against the engine bounds.
func (e *Engine) Validate(params LoanParameters) ValidationResult {
	result := validate(params, e.bounds)
	if !result.IsValid {
		e.logger.Debug("loan parameters rejected",
			zap.String("op", "loans.Validate"),
			zap.Strings("errors", result.Errors),
		)
	}
	for _, warning := range result.Warnings {
		e.logger.Debug("loan parameter warning: "+warning,
			zap.String("op", "loans.Validate"),
		)
	}
	return result
}

// CalculateEMI validates params and computes the EMI, schedule and summary.
// Invalid parameters yield a *ValidationError listing every problem. A zero
// startDate means today according to the engine clock.
func (e *Engine) CalculateEMI(params LoanParameters, startDate time.Time) (EMICalculationResult, error) {
	validation := e.Validate(params)
	if !validation.IsValid {
		return EMICalculationResult{}, &ValidationError{Errors: validation.Errors}
	}

	if startDate.IsZero() {
		startDate = e.now()
	}

	monthlyRate := MonthlyRate(params.AnnualInterestRate)
	emi := CalculateEMIAmount(params.Principal, params.AnnualInterestRate, params.TenureMonths)
	schedule := GenerateSchedule(params.Principal, emi, monthlyRate, params.TenureMonths, startDate)
	result := buildResult(mathutil.Round(params.Principal), emi, params.TenureMonths, schedule)

	e.logger.Debug(fmt.Sprintf("calculated EMI %.2f over %d months", emi, params.TenureMonths),
		zap.String("op", "loans.CalculateEMI"),
		zap.Float64("principal", result.Summary.Principal),
		zap.Float64("rate", params.AnnualInterestRate),
		zap.Float64("total_interest", result.TotalInterest),
	)
	return result, nil
}

// ApplyPrepayment applies a prepayment and logs early closures.
func (e *Engine) ApplyPrepayment(schedule []EMIScheduleItem, prepaymentAmount float64, prepaymentMonth int) ([]EMIScheduleItem, error) {
	updated, err := ApplyPrepayment(schedule, prepaymentAmount, prepaymentMonth)
	if err != nil {
		return nil, err
	}
	if len(updated) < len(schedule) {
		e.logger.Debug(fmt.Sprintf("prepayment of %.2f closes the loan at installment %d",
			prepaymentAmount, len(updated)),
			zap.String("op", "loans.ApplyPrepayment"),
		)
	}
	return updated, nil
}

// GenerateLoanNumber formats {lender}-{YY}-{MM}[-{branch}]-{NNNNN} using the
// engine clock. An empty lender code selects constants.DefaultLenderCode.
// Numbers are random, not guaranteed unique.
func (e *Engine) GenerateLoanNumber(lenderCode, branchCode string) string {
	lenderCode = strings.TrimSpace(lenderCode)
	if lenderCode == "" {
		lenderCode = constants.DefaultLenderCode
	}
	now := e.now()

	var b strings.Builder
	fmt.Fprintf(&b, "%s-%02d-%02d", lenderCode, now.Year()%100, int(now.Month()))
	if branch := strings.TrimSpace(branchCode); branch != "" {
		b.WriteString("-" + branch)
	}
	fmt.Fprintf(&b, "-%05d", e.suffix())
	return b.String()
}

func (e *Engine) suffix() int {
	if e.rand == nil {
		return rand.IntN(constants.LoanNumberSuffixRange)
	}
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return e.rand.IntN(constants.LoanNumberSuffixRange)
}

// GenerateLoanNumber formats a loan number from the current date and a
// random five digit suffix.
func GenerateLoanNumber(lenderCode, branchCode string) string {
	return defaultEngine.GenerateLoanNumber(lenderCode, branchCode)
}
