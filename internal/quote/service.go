// Package quote composes the loan engine with caching and loan numbering to
// produce borrower-facing quotes.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/microloan/internal/cache"
	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/datetime"
	"github.com/iwvelando/microloan/pkg/loans"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Quote is a priced loan offer. ID and LoanNumber are unique per quote even
// when the schedule comes from the cache.
type Quote struct {
	ID         string                     `json:"id"`
	LoanNumber string                     `json:"loanNumber"`
	Parameters loans.LoanParameters       `json:"parameters"`
	StartDate  time.Time                  `json:"startDate"`
	Warnings   []string                   `json:"warnings"`
	Cached     bool                       `json:"cached"`
	Result     loans.EMICalculationResult `json:"result"`
}

// TenureOption summarizes one tenure in a comparison. Errors is set instead
// of the figures when the tenure is out of bounds.
type TenureOption struct {
	TenureMonths          int      `json:"tenureMonths"`
	EMIAmount             float64  `json:"emiAmount"`
	TotalInterest         float64  `json:"totalInterest"`
	TotalAmount           float64  `json:"totalAmount"`
	EffectiveInterestRate float64  `json:"effectiveInterestRate"`
	Errors                []string `json:"errors,omitempty"`
}

// AffordabilityQuote sizes a loan from the borrower's income.
type AffordabilityQuote struct {
	MonthlyIncome      float64 `json:"monthlyIncome"`
	ExistingEMIs       float64 `json:"existingEmis"`
	FOIR               float64 `json:"foir"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	TenureMonths       int     `json:"tenureMonths"`
	MaxEMI             float64 `json:"maxEmi"`
	MaxLoanAmount      float64 `json:"maxLoanAmount"`
}

// Options carries lender policy that is not part of the engine bounds.
type Options struct {
	LenderCode string
	BranchCode string
	FOIR       float64
	TTL        time.Duration
}

// Service produces quotes. It is safe for concurrent use.
type Service struct {
	engine *loans.Engine
	cache  cache.Cache
	logger *zap.Logger
	opts   Options
}

// NewService wires a quote service. A nil cache disables caching.
func NewService(engine *loans.Engine, c cache.Cache, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = loans.NewEngine(logger)
	}
	if c == nil {
		c = cache.Noop{}
	}
	if opts.FOIR <= 0 {
		opts.FOIR = constants.DefaultFOIR
	}
	return &Service{
		engine: engine,
		cache:  c,
		logger: logger,
		opts:   opts,
	}
}

// Engine exposes the underlying engine for operations that need no quote.
func (s *Service) Engine() *loans.Engine {
	return s.engine
}

// Quote prices params from startDate. A zero startDate means the start of
// today. Invalid parameters yield a *loans.ValidationError.
func (s *Service) Quote(ctx context.Context, params loans.LoanParameters, startDate time.Time) (Quote, error) {
	validation := s.engine.Validate(params)
	if !validation.IsValid {
		return Quote{}, &loans.ValidationError{Errors: validation.Errors}
	}
	if startDate.IsZero() {
		startDate = datetime.StartOfDay(s.engine.Now())
	}

	result, cached, err := s.calculate(ctx, params, startDate)
	if err != nil {
		return Quote{}, err
	}

	q := Quote{
		ID:         uuid.NewString(),
		LoanNumber: s.LoanNumber("", ""),
		Parameters: params,
		StartDate:  startDate,
		Warnings:   validation.Warnings,
		Cached:     cached,
		Result:     result,
	}
	s.logger.Info("issued quote",
		zap.String("op", "quote.Quote"),
		zap.String("id", q.ID),
		zap.String("loan_number", q.LoanNumber),
		zap.Bool("cached", cached),
	)
	return q, nil
}

func (s *Service) calculate(ctx context.Context, params loans.LoanParameters, startDate time.Time) (loans.EMICalculationResult, bool, error) {
	key := cache.Key(params, startDate)

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("quote cache read failed",
			zap.String("op", "quote.calculate"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	if ok {
		var result loans.EMICalculationResult
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			return result, true, nil
		}
		s.logger.Warn("discarding undecodable cache entry",
			zap.String("op", "quote.calculate"),
			zap.String("key", key),
		)
	}

	result, err := s.engine.CalculateEMI(params, startDate)
	if err != nil {
		return loans.EMICalculationResult{}, false, err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return loans.EMICalculationResult{}, false, fmt.Errorf("encoding result: %w", err)
	}
	if err := s.cache.Set(ctx, key, string(encoded), s.opts.TTL); err != nil {
		s.logger.Warn("quote cache write failed",
			zap.String("op", "quote.calculate"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return result, false, nil
}

// CompareTenures prices the same principal and rate over several tenures in
// parallel. Options come back in the order the tenures were given.
func (s *Service) CompareTenures(ctx context.Context, principal, annualRate float64, tenures []int, startDate time.Time) ([]TenureOption, error) {
	if len(tenures) == 0 {
		return nil, &loans.ValidationError{Errors: []string{"at least one tenure is required"}}
	}
	if startDate.IsZero() {
		startDate = datetime.StartOfDay(s.engine.Now())
	}

	options := make([]TenureOption, len(tenures))
	g, gctx := errgroup.WithContext(ctx)

	for i, tenure := range tenures {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			params := loans.LoanParameters{
				Principal:          principal,
				AnnualInterestRate: annualRate,
				TenureMonths:       tenure,
			}
			option := TenureOption{TenureMonths: tenure}

			validation := s.engine.Validate(params)
			if !validation.IsValid {
				option.Errors = validation.Errors
			} else {
				result, _, err := s.calculate(gctx, params, startDate)
				if err != nil {
					return err
				}
				option.EMIAmount = result.EMIAmount
				option.TotalInterest = result.TotalInterest
				option.TotalAmount = result.TotalAmount
				option.EffectiveInterestRate = result.Summary.EffectiveInterestRate
			}

			options[i] = option
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return options, nil
}

// Affordability sizes the largest EMI and loan a borrower can carry. A
// non-positive foir selects the service default.
func (s *Service) Affordability(monthlyIncome, existingEMIs, foir, annualRate float64, tenureMonths int) (AffordabilityQuote, error) {
	var problems []string
	if monthlyIncome < 0 {
		problems = append(problems, "monthly income cannot be negative")
	}
	if existingEMIs < 0 {
		problems = append(problems, "existing EMIs cannot be negative")
	}
	if foir > 1 {
		problems = append(problems, "FOIR cannot exceed 1")
	}
	if len(problems) > 0 {
		return AffordabilityQuote{}, &loans.ValidationError{Errors: problems}
	}
	if foir <= 0 {
		foir = s.opts.FOIR
	}

	maxEMI := loans.MaxAffordableEMI(monthlyIncome, existingEMIs, foir)
	maxLoan, err := loans.MaxLoanAmount(maxEMI, annualRate, tenureMonths)
	if err != nil {
		return AffordabilityQuote{}, err
	}

	return AffordabilityQuote{
		MonthlyIncome:      monthlyIncome,
		ExistingEMIs:       existingEMIs,
		FOIR:               foir,
		AnnualInterestRate: annualRate,
		TenureMonths:       tenureMonths,
		MaxEMI:             maxEMI,
		MaxLoanAmount:      maxLoan,
	}, nil
}

// LoanNumber generates a loan number, falling back to the configured lender
// and branch codes for empty arguments.
func (s *Service) LoanNumber(lenderCode, branchCode string) string {
	if lenderCode == "" {
		lenderCode = s.opts.LenderCode
	}
	if branchCode == "" {
		branchCode = s.opts.BranchCode
	}
	return s.engine.GenerateLoanNumber(lenderCode, branchCode)
}
