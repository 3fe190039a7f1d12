package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/microloan/internal/quote"
	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/datetime"
	"github.com/iwvelando/microloan/pkg/loans"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	quotes      *quote.Service
	engine      *loans.Engine
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the loan API and metrics.
func NewHandler(logger *zap.Logger, quotes *quote.Service, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if quotes == nil {
		quotes = quote.NewService(nil, nil, logger, quote.Options{})
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		quotes:      quotes,
		engine:      quotes.Engine(),
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}
	m := newMetrics()

	routes := map[string]http.HandlerFunc{
		"/api/emi":               h.handleEMI,
		"/api/validate":          h.handleValidate,
		"/api/affordability":     h.handleAffordability,
		"/api/max-loan":          h.handleMaxLoan,
		"/api/prepayment":        h.handlePrepayment,
		"/api/interest/periodic": h.handlePeriodicInterest,
		"/api/interest/penalty":  h.handlePenaltyInterest,
		"/api/compare-tenures":   h.handleCompareTenures,
		"/api/loan-number":       h.handleLoanNumber,
		"/api/version":           h.handleVersion,
	}

	mux := http.NewServeMux()
	for path, fn := range routes {
		mux.HandleFunc(path, m.instrument(path, fn))
	}
	mux.Handle("/metrics", m.handler())

	return mux
}

type emiRequest struct {
	loans.LoanParameters
	StartDate string `json:"startDate,omitempty"`
}

type affordabilityRequest struct {
	MonthlyIncome      float64 `json:"monthlyIncome"`
	ExistingEMIs       float64 `json:"existingEmis"`
	FOIR               float64 `json:"foir"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	TenureMonths       int     `json:"tenureMonths"`
}

type maxLoanRequest struct {
	AffordableEMI      float64 `json:"affordableEmi"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	TenureMonths       int     `json:"tenureMonths"`
}

type prepaymentRequest struct {
	emiRequest
	PrepaymentAmount float64 `json:"prepaymentAmount"`
	PrepaymentMonth  int     `json:"prepaymentMonth"`
}

type prepaymentResponse struct {
	OriginalTenure int                     `json:"originalTenure"`
	ClosedEarly    bool                    `json:"closedEarly"`
	Schedule       []loans.EMIScheduleItem `json:"schedule"`
}

type interestRequest struct {
	Principal          float64 `json:"principal"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	Days               int     `json:"days"`
}

type penaltyRequest struct {
	OverdueAmount float64 `json:"overdueAmount"`
	PenaltyRate   float64 `json:"penaltyRate"`
	OverdueDays   int     `json:"overdueDays"`
}

type compareRequest struct {
	Principal          float64 `json:"principal"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	Tenures            []int   `json:"tenures"`
	StartDate          string  `json:"startDate,omitempty"`
}

type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

func (h *handler) handleEMI(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEMI"
	var req emiRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	start, ok := h.parseStart(w, req.StartDate, op)
	if !ok {
		return
	}

	q, err := h.quotes.Quote(r.Context(), req.LoanParameters, start)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, q)
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var params loans.LoanParameters
	if !h.decode(w, r, &params, "server.handleValidate") {
		return
	}
	h.writeJSON(w, http.StatusOK, h.engine.Validate(params))
}

func (h *handler) handleAffordability(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAffordability"
	var req affordabilityRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	result, err := h.quotes.Affordability(req.MonthlyIncome, req.ExistingEMIs, req.FOIR, req.AnnualInterestRate, req.TenureMonths)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleMaxLoan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMaxLoan"
	var req maxLoanRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	amount, err := loans.MaxLoanAmount(req.AffordableEMI, req.AnnualInterestRate, req.TenureMonths)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{"maxLoanAmount": amount})
}

func (h *handler) handlePrepayment(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePrepayment"
	var req prepaymentRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	start, ok := h.parseStart(w, req.StartDate, op)
	if !ok {
		return
	}

	result, err := h.engine.CalculateEMI(req.LoanParameters, start)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	updated, err := h.engine.ApplyPrepayment(result.Schedule, req.PrepaymentAmount, req.PrepaymentMonth)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, prepaymentResponse{
		OriginalTenure: len(result.Schedule),
		ClosedEarly:    len(updated) < len(result.Schedule),
		Schedule:       updated,
	})
}

func (h *handler) handlePeriodicInterest(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePeriodicInterest"
	var req interestRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	if problems := interestProblems(req.Principal, req.AnnualInterestRate, req.Days); len(problems) > 0 {
		h.respondFailure(w, &loans.ValidationError{Errors: problems}, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{
		"interest": loans.PeriodicInterest(req.Principal, req.AnnualInterestRate, req.Days),
	})
}

func (h *handler) handlePenaltyInterest(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePenaltyInterest"
	var req penaltyRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	if problems := interestProblems(req.OverdueAmount, req.PenaltyRate, req.OverdueDays); len(problems) > 0 {
		h.respondFailure(w, &loans.ValidationError{Errors: problems}, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]float64{
		"penalty": loans.PenaltyInterest(req.OverdueAmount, req.PenaltyRate, req.OverdueDays),
	})
}

func interestProblems(amount, rate float64, days int) []string {
	var problems []string
	if math.IsNaN(amount) || amount < 0 {
		problems = append(problems, "amount cannot be negative")
	}
	if math.IsNaN(rate) || rate < 0 {
		problems = append(problems, "interest rate cannot be negative")
	}
	if days < 0 {
		problems = append(problems, "days cannot be negative")
	}
	return problems
}

func (h *handler) handleCompareTenures(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompareTenures"
	var req compareRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	start, ok := h.parseStart(w, req.StartDate, op)
	if !ok {
		return
	}

	options, err := h.quotes.CompareTenures(r.Context(), req.Principal, req.AnnualInterestRate, req.Tenures, start)
	if err != nil {
		h.respondFailure(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"options": options})
}

func (h *handler) handleLoanNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	h.writeJSON(w, http.StatusOK, map[string]string{
		"loanNumber": h.quotes.LoanNumber(query.Get("lender"), query.Get("branch")),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decode reads a JSON POST body into dst, answering the request itself and
// returning false when that fails.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) parseStart(w http.ResponseWriter, value, op string) (time.Time, bool) {
	start, err := datetime.ParseDate(value)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("startDate must be %s: %v", constants.DateLayout, err), op)
		return time.Time{}, false
	}
	return start, true
}

// respondFailure maps engine errors onto HTTP statuses.
func (h *handler) respondFailure(w http.ResponseWriter, err error, op string) {
	var validationErr *loans.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.Debug("request rejected",
			zap.String("op", op),
			zap.Strings("errors", validationErr.Errors),
		)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  loans.ErrInvalidLoanParameters.Error(),
			Errors: validationErr.Errors,
		})
	case errors.Is(err, loans.ErrPrepaymentMonthOutOfRange), errors.Is(err, loans.ErrInvalidPrepaymentAmount):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("loan request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
