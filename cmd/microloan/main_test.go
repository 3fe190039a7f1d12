package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/iwvelando/microloan/internal/config"
	"github.com/iwvelando/microloan/pkg/loans"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEMICommandCSV(t *testing.T) {
	out, err := run(t, "emi", "-p", "100000", "-r", "12", "-t", "12", "--start", "2025-01-31", "--output-format", "csv")
	if err != nil {
		t.Fatalf("emi failed: %v\n%s", err, out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 13 {
		t.Fatalf("expected 13 CSV lines, got %d:\n%s", len(lines), out)
	}
	if lines[1] != `"1","2025-02-28","8884.88","7884.88","1000.00","92115.12"` {
		t.Errorf("unexpected first row %s", lines[1])
	}
}

func TestEMICommandPretty(t *testing.T) {
	out, err := run(t, "emi", "-p", "100000", "-r", "12", "-t", "12", "--start", "2025-01-15")
	if err != nil {
		t.Fatalf("emi failed: %v", err)
	}
	if !regexp.MustCompile(`Loan number: ML-\d{2}-\d{2}-\d{5} \(quote `).MatchString(out) {
		t.Errorf("missing loan number line:\n%s", out)
	}
	if !strings.Contains(out, "EMI: ₹8,884.88") {
		t.Errorf("missing EMI in output:\n%s", out)
	}
}

func TestEMICommandInvalid(t *testing.T) {
	_, err := run(t, "emi", "-p", "10", "-r", "12", "-t", "12")
	if !errors.Is(err, loans.ErrInvalidLoanParameters) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := run(t, "emi", "-p", "100000", "-r", "12", "-t", "12", "--start", "tomorrow"); err == nil {
		t.Error("expected error for bad start date")
	}
	if _, err := run(t, "emi", "-p", "100000", "-r", "12", "-t", "12", "--output-format", "xml"); err == nil {
		t.Error("expected error for bad output format")
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate", "-p", "100000", "-r", "0.05", "-t", "12")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "WARNING:") || !strings.Contains(out, "OK") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, "validate", "-p", "0", "-r", "12", "-t", "0")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if strings.Count(out, "ERROR:") != 2 {
		t.Errorf("expected two errors:\n%s", out)
	}
}

func TestAffordabilityCommands(t *testing.T) {
	out, err := run(t, "afford", "--income", "50000", "-r", "12", "-t", "12")
	if err != nil {
		t.Fatalf("afford failed: %v", err)
	}
	for _, want := range []string{"FOIR: 0.40", "Max EMI: ₹20,000.00", "Max loan amount: ₹225,101.55"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	out, err = run(t, "max-loan", "--emi", "1000", "-r", "0", "-t", "24")
	if err != nil {
		t.Fatalf("max-loan failed: %v", err)
	}
	if strings.TrimSpace(out) != "Max loan amount: ₹24,000.00" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPrepayCommand(t *testing.T) {
	out, err := run(t, "prepay", "-p", "100000", "-r", "12", "-t", "12", "--start", "2025-01-15",
		"--amount", "100000", "--month", "6")
	if err != nil {
		t.Fatalf("prepay failed: %v", err)
	}
	if !strings.Contains(out, "Loan closes at installment 6") {
		t.Errorf("expected early closure:\n%s", out)
	}

	if _, err := run(t, "prepay", "-p", "100000", "-r", "12", "-t", "12", "--amount", "10", "--month", "13"); !errors.Is(err, loans.ErrPrepaymentMonthOutOfRange) {
		t.Errorf("expected month out of range, got %v", err)
	}
}

func TestInterestCommands(t *testing.T) {
	out, err := run(t, "interest", "-p", "100000", "-r", "12", "--days", "30")
	if err != nil || strings.TrimSpace(out) != "Interest: ₹986.30" {
		t.Errorf("interest = %q, %v", out, err)
	}

	out, err = run(t, "penalty", "--amount", "1000", "-r", "24", "--days", "50")
	if err != nil || strings.TrimSpace(out) != "Penalty: ₹32.88" {
		t.Errorf("penalty = %q, %v", out, err)
	}
}

func TestLoanNumberCommand(t *testing.T) {
	out, err := run(t, "loan-number", "--lender", "KSB", "--branch", "HQ")
	if err != nil {
		t.Fatalf("loan-number failed: %v", err)
	}
	if !regexp.MustCompile(`^KSB-\d{2}-\d{2}-HQ-\d{5}$`).MatchString(strings.TrimSpace(out)) {
		t.Errorf("unexpected loan number %q", out)
	}
}

func TestCompareCommand(t *testing.T) {
	out, err := run(t, "compare", "-p", "100000", "-r", "12", "--tenures", "24,12,400", "--start", "2025-01-15")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines:\n%s", out)
	}
	if !strings.HasPrefix(lines[0], " 24 months | EMI ₹4,707.35") {
		t.Errorf("unexpected first option %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], " 12 months | EMI ₹8,884.88") {
		t.Errorf("unexpected second option %q", lines[1])
	}
	if !strings.Contains(lines[2], "tenure") {
		t.Errorf("expected tenure error, got %q", lines[2])
	}
}

func TestConfigFileBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("lending:\n  maxTenure: 24\n  lenderCode: CFG\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "--config", path, "emi", "-p", "100000", "-r", "12", "-t", "36"); err == nil {
		t.Error("expected configured tenure cap to reject 36 months")
	}

	out, err := run(t, "--config", path, "loan-number")
	if err != nil || !strings.HasPrefix(out, "CFG-") {
		t.Errorf("loan-number = %q, %v", out, err)
	}

	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version"); err == nil {
		t.Error("expected error for explicit missing config")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || strings.TrimSpace(out) != version {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		config   config.LoggingConfig
		override string
		wantErr  bool
	}{
		{"Defaults", config.LoggingConfig{}, "", false},
		{"Console debug", config.LoggingConfig{Level: "debug", Format: "console"}, "", false},
		{"Override wins", config.LoggingConfig{Level: "bogus"}, "warn", false},
		{"Bad level", config.LoggingConfig{Level: "bogus"}, "", true},
		{"Bad format", config.LoggingConfig{Format: "xml"}, "", true},
		{"Log file", config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "microloan.log")}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if (err != nil) != tt.wantErr {
				t.Fatalf("initializeLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if logger != nil {
				_ = logger.Sync()
			}
		})
	}
}
