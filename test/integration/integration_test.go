package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/microloan/internal/cache"
	"github.com/iwvelando/microloan/internal/config"
	"github.com/iwvelando/microloan/internal/quote"
	"github.com/iwvelando/microloan/internal/server"
	"github.com/iwvelando/microloan/pkg/loans"
	"github.com/iwvelando/microloan/pkg/output"
	"github.com/iwvelando/microloan/pkg/testutil"
	"go.uber.org/zap"
)

const testConfigPath = "../test_config.yaml"

// newService wires the quote service the same way the CLI does.
func newService(t *testing.T) (*config.Configuration, *quote.Service) {
	t.Helper()

	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		t.Fatalf("ValidateConfiguration failed: %v", err)
	}
	if len(warnings) > 0 {
		t.Fatalf("unexpected configuration warnings: %v", warnings)
	}

	logger := zap.NewNop()
	c, err := cache.New(conf.Cache, logger)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	engine := loans.NewEngine(logger, loans.WithBounds(conf.Bounds()))
	return conf, quote.NewService(engine, c, logger, quote.Options{
		LenderCode: conf.Lending.LenderCode,
		BranchCode: conf.Lending.BranchCode,
		FOIR:       conf.Lending.FOIR,
		TTL:        conf.Cache.TTL(),
	})
}

func TestBasicFunctionality(t *testing.T) {
	conf, svc := newService(t)

	if conf.Output.Format != "csv" || conf.Lending.BranchCode != "TST01" {
		t.Fatalf("test configuration not applied: %+v", conf)
	}

	q, err := svc.Quote(context.Background(), loans.LoanParameters{
		Principal:          100000,
		AnnualInterestRate: 12,
		TenureMonths:       12,
	}, testutil.FixedStart)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if !strings.HasPrefix(q.LoanNumber, "ML-") || !strings.Contains(q.LoanNumber, "-TST01-") {
		t.Errorf("unexpected loan number %s", q.LoanNumber)
	}
	if !testutil.Reconciles(q.Result) {
		t.Errorf("schedule does not reconcile: %+v", q.Result.Summary)
	}

	csv := output.CsvString(q.Result)
	if !strings.Contains(csv, `"12","2026-01-31","8884.85","8796.88","87.97","0.00"`) {
		t.Errorf("final CSV row missing:\n%s", csv)
	}
}

// TestScheduleGrid checks the repayment invariants across the lending bounds.
func TestScheduleGrid(t *testing.T) {
	_, svc := newService(t)
	ctx := context.Background()

	principals := []float64{1000, 54321.99, 250000, 10000000}
	rates := []float64{0, 0.1, 7.25, 12, 36}
	tenures := []int{1, 7, 12, 60, 360}

	start := time.Now()
	count := 0
	for _, p := range principals {
		for _, r := range rates {
			for _, n := range tenures {
				params := loans.LoanParameters{Principal: p, AnnualInterestRate: r, TenureMonths: n}
				q, err := svc.Quote(ctx, params, testutil.FixedStart)
				if err != nil {
					t.Fatalf("Quote(%+v) failed: %v", params, err)
				}
				count++

				result := q.Result
				if len(result.Schedule) != n {
					t.Errorf("%+v: %d installments, expected %d", params, len(result.Schedule), n)
					continue
				}
				if !testutil.Reconciles(result) {
					t.Errorf("%+v: schedule does not reconcile", params)
				}
				for i, item := range result.Schedule {
					if item.EMINumber != i+1 {
						t.Errorf("%+v: installment %d numbered %d", params, i+1, item.EMINumber)
					}
					if i < n-1 && item.EMIAmount != result.EMIAmount {
						t.Errorf("%+v: installment %d amount %.2f differs from EMI %.2f",
							params, i+1, item.EMIAmount, result.EMIAmount)
					}
				}
				if last := testutil.FindInstallment(result.Schedule, n); last == nil || last.OutstandingPrincipal != 0 {
					t.Errorf("%+v: final installment does not close the loan", params)
				}
			}
		}
	}

	elapsed := time.Since(start)
	t.Logf("computed %d schedules in %v", count, elapsed)
	if elapsed > 10*time.Second {
		t.Errorf("grid took %v, exceeds 10 second threshold", elapsed)
	}
}

// TestDataConsistency validates that repeated runs produce identical results.
func TestDataConsistency(t *testing.T) {
	params := loans.LoanParameters{Principal: 250000, AnnualInterestRate: 10.5, TenureMonths: 24}

	var first loans.EMICalculationResult
	for run := 0; run < 5; run++ {
		_, svc := newService(t)
		q, err := svc.Quote(context.Background(), params, testutil.FixedStart)
		if err != nil {
			t.Fatalf("Quote failed on run %d: %v", run, err)
		}
		if run == 0 {
			first = q.Result
			continue
		}

		if q.Result.EMIAmount != first.EMIAmount || q.Result.TotalAmount != first.TotalAmount {
			t.Errorf("run %d: totals differ %.2f/%.2f vs %.2f/%.2f", run,
				q.Result.EMIAmount, q.Result.TotalAmount, first.EMIAmount, first.TotalAmount)
		}
		for i := range first.Schedule {
			if q.Result.Schedule[i] != first.Schedule[i] {
				t.Errorf("run %d: installment %d differs", run, i+1)
			}
		}
	}

	if first.EMIAmount != 11594.01 {
		t.Errorf("EMI = %.2f, expected 11594.01", first.EMIAmount)
	}
}

func TestEndToEndAPI(t *testing.T) {
	_, svc := newService(t)
	ts := httptest.NewServer(server.NewHandler(zap.NewNop(), svc, 0, "integration"))
	defer ts.Close()

	body := `{"principal":100000,"annualInterestRate":12,"tenureMonths":12,"startDate":"2025-01-31"}`
	resp, err := http.Post(ts.URL+"/api/emi", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /api/emi failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var q quote.Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		t.Fatalf("failed to decode quote: %v", err)
	}
	if !testutil.Reconciles(q.Result) {
		t.Errorf("API schedule does not reconcile")
	}
	if got := q.Result.Schedule[0].DueDate.Format("2006-01-02"); got != "2025-02-28" {
		t.Errorf("first due date %s, expected 2025-02-28", got)
	}

	prepay := `{"principal":100000,"annualInterestRate":12,"tenureMonths":12,"startDate":"2025-01-31",` +
		`"prepaymentAmount":20000,"prepaymentMonth":9}`
	resp2, err := http.Post(ts.URL+"/api/prepayment", "application/json", bytes.NewBufferString(prepay))
	if err != nil {
		t.Fatalf("POST /api/prepayment failed: %v", err)
	}
	defer resp2.Body.Close()

	var pre struct {
		ClosedEarly bool                    `json:"closedEarly"`
		Schedule    []loans.EMIScheduleItem `json:"schedule"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&pre); err != nil {
		t.Fatalf("failed to decode prepayment: %v", err)
	}
	if !pre.ClosedEarly || len(pre.Schedule) != 10 {
		t.Errorf("expected closure at installment 10, got %d installments", len(pre.Schedule))
	}
}

func TestConfigurationVariations(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		tenure    int
		wantValid bool
	}{
		{"Short tenure cap", "lending:\n  maxTenure: 24\n", 36, false},
		{"Wider tenure cap", "lending:\n  maxTenure: 480\n", 420, true},
		{"Higher minimum", "lending:\n  minTenure: 6\n", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := config.LoadConfigurationFromReader(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatalf("LoadConfigurationFromReader failed: %v", err)
			}
			engine := loans.NewEngine(zap.NewNop(), loans.WithBounds(conf.Bounds()))
			result := engine.Validate(loans.LoanParameters{
				Principal:          100000,
				AnnualInterestRate: 12,
				TenureMonths:       tt.tenure,
			})
			if result.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, expected %v (%v)", result.IsValid, tt.wantValid, result.Errors)
			}
		})
	}
}
