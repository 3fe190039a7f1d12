package main

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/datetime"
	"github.com/iwvelando/microloan/pkg/format"
	"github.com/iwvelando/microloan/pkg/loans"
	"github.com/iwvelando/microloan/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loanFlags are the inputs shared by every schedule-producing command.
type loanFlags struct {
	principal float64
	rate      float64
	tenure    int
	start     string
}

func (f *loanFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.principal, "principal", "p", 0, "loan principal")
	cmd.Flags().Float64VarP(&f.rate, "rate", "r", 0, "annual interest rate in percent")
	cmd.Flags().IntVarP(&f.tenure, "tenure", "t", 0, "tenure in months")
	cmd.Flags().StringVar(&f.start, "start", "", "disbursement date ("+constants.DateLayout+"), defaults to today")
}

func (f *loanFlags) params() loans.LoanParameters {
	return loans.LoanParameters{
		Principal:          f.principal,
		AnnualInterestRate: f.rate,
		TenureMonths:       f.tenure,
	}
}

func (f *loanFlags) startDate() (time.Time, error) {
	start, err := datetime.ParseDate(f.start)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	return start, nil
}

func (a *app) writeSchedule(w io.Writer, result loans.EMICalculationResult) {
	switch a.outputFormat {
	case constants.OutputFormatCSV:
		output.CsvFormat(w, result)
	default:
		output.PrettyFormat(w, result)
	}
}

func emiCmd(a *app) *cobra.Command {
	var f loanFlags

	c := &cobra.Command{
		Use:   "emi",
		Short: "Calculate the EMI and full repayment schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := f.startDate()
			if err != nil {
				return err
			}
			q, err := a.quotes.Quote(cmd.Context(), f.params(), start)
			if err != nil {
				return err
			}
			for _, warning := range q.Warnings {
				a.logger.Warn(warning, zap.String("op", "main.emi"))
			}

			out := cmd.OutOrStdout()
			if a.outputFormat == constants.OutputFormatPretty {
				fmt.Fprintf(out, "Loan number: %s (quote %s)\n", q.LoanNumber, q.ID)
			}
			a.writeSchedule(out, q.Result)
			return nil
		},
	}
	f.register(c)
	return c
}

func validateCmd(a *app) *cobra.Command {
	var f loanFlags

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check loan parameters against the lending bounds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := a.quotes.Engine().Validate(f.params())
			out := cmd.OutOrStdout()
			for _, msg := range result.Errors {
				fmt.Fprintln(out, "ERROR:", msg)
			}
			for _, msg := range result.Warnings {
				fmt.Fprintln(out, "WARNING:", msg)
			}
			if !result.IsValid {
				return &loans.ValidationError{Errors: result.Errors}
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
	f.register(c)
	return c
}

func affordCmd(a *app) *cobra.Command {
	var income, existing, foir, rate float64
	var tenure int

	c := &cobra.Command{
		Use:   "afford",
		Short: "Size the largest EMI and loan a borrower can carry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.quotes.Affordability(income, existing, foir, rate, tenure)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "FOIR: %.2f\n", result.FOIR)
			fmt.Fprintf(out, "Max EMI: %s\n", format.Currency(result.MaxEMI))
			fmt.Fprintf(out, "Max loan amount: %s\n", format.Currency(result.MaxLoanAmount))
			return nil
		},
	}
	c.Flags().Float64Var(&income, "income", 0, "monthly income")
	c.Flags().Float64Var(&existing, "existing", 0, "existing monthly EMIs")
	c.Flags().Float64Var(&foir, "foir", 0, "fixed obligation to income ratio, defaults to the configured value")
	c.Flags().Float64VarP(&rate, "rate", "r", 0, "annual interest rate in percent")
	c.Flags().IntVarP(&tenure, "tenure", "t", 0, "tenure in months")
	return c
}

func maxLoanCmd(a *app) *cobra.Command {
	var emi, rate float64
	var tenure int

	c := &cobra.Command{
		Use:   "max-loan",
		Short: "Find the principal an EMI can service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := loans.MaxLoanAmount(emi, rate, tenure)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Max loan amount: %s\n", format.Currency(amount))
			return nil
		},
	}
	c.Flags().Float64Var(&emi, "emi", 0, "affordable monthly installment")
	c.Flags().Float64VarP(&rate, "rate", "r", 0, "annual interest rate in percent")
	c.Flags().IntVarP(&tenure, "tenure", "t", 0, "tenure in months")
	return c
}

func prepayCmd(a *app) *cobra.Command {
	var f loanFlags
	var amount float64
	var month int

	c := &cobra.Command{
		Use:   "prepay",
		Short: "Show the schedule after a lump-sum prepayment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := f.startDate()
			if err != nil {
				return err
			}
			engine := a.quotes.Engine()
			result, err := engine.CalculateEMI(f.params(), start)
			if err != nil {
				return err
			}
			updated, err := engine.ApplyPrepayment(result.Schedule, amount, month)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(updated) < len(result.Schedule) && a.outputFormat == constants.OutputFormatPretty {
				fmt.Fprintf(out, "Loan closes at installment %d\n", len(updated))
			}
			result.Schedule = updated
			a.writeSchedule(out, result)
			return nil
		},
	}
	f.register(c)
	c.Flags().Float64Var(&amount, "amount", 0, "prepayment amount")
	c.Flags().IntVar(&month, "month", 1, "installment the prepayment is made at")
	return c
}

func interestCmd(a *app) *cobra.Command {
	var principal, rate float64
	var days int

	c := &cobra.Command{
		Use:   "interest",
		Short: "Simple interest for a number of days (actual/365)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			interest := loans.PeriodicInterest(principal, rate, days)
			a.logger.Debug("computed periodic interest", zap.String("op", "main.interest"), zap.Float64("interest", interest))
			fmt.Fprintf(cmd.OutOrStdout(), "Interest: %s\n", format.Currency(interest))
			return nil
		},
	}
	c.Flags().Float64VarP(&principal, "principal", "p", 0, "principal outstanding")
	c.Flags().Float64VarP(&rate, "rate", "r", 0, "annual interest rate in percent")
	c.Flags().IntVar(&days, "days", 0, "number of days")
	return c
}

func penaltyCmd(a *app) *cobra.Command {
	var amount, rate float64
	var days int

	c := &cobra.Command{
		Use:   "penalty",
		Short: "Penalty interest on an overdue amount",
		RunE: func(cmd *cobra.Command, _ []string) error {
			penalty := loans.PenaltyInterest(amount, rate, days)
			a.logger.Debug("computed penalty interest", zap.String("op", "main.penalty"), zap.Float64("penalty", penalty))
			fmt.Fprintf(cmd.OutOrStdout(), "Penalty: %s\n", format.Currency(penalty))
			return nil
		},
	}
	c.Flags().Float64Var(&amount, "amount", 0, "overdue amount")
	c.Flags().Float64VarP(&rate, "rate", "r", 0, "annual penalty rate in percent")
	c.Flags().IntVar(&days, "days", 0, "days overdue")
	return c
}

func loanNumberCmd(a *app) *cobra.Command {
	var lender, branch string

	c := &cobra.Command{
		Use:   "loan-number",
		Short: "Generate a loan number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.quotes.LoanNumber(lender, branch))
			return nil
		},
	}
	c.Flags().StringVar(&lender, "lender", "", "lender code, defaults to the configured value")
	c.Flags().StringVar(&branch, "branch", "", "branch code, defaults to the configured value")
	return c
}

func compareCmd(a *app) *cobra.Command {
	var principal, rate float64
	var tenures []int
	var start string

	c := &cobra.Command{
		Use:   "compare",
		Short: "Compare the same loan over several tenures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			startDate, err := datetime.ParseDate(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			options, err := a.quotes.CompareTenures(cmd.Context(), principal, rate, tenures, startDate)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			csv := a.outputFormat == constants.OutputFormatCSV
			if csv {
				fmt.Fprintln(out, `"tenure_months","emi_amount","total_interest","total_amount","effective_rate","errors"`)
			}
			for _, o := range options {
				switch {
				case csv:
					errs := ""
					if len(o.Errors) > 0 {
						errs = o.Errors[0]
					}
					fmt.Fprintf(out, "\"%d\",\"%.2f\",\"%.2f\",\"%.2f\",\"%.2f\",%q\n",
						o.TenureMonths, o.EMIAmount, o.TotalInterest, o.TotalAmount, o.EffectiveInterestRate, errs)
				case len(o.Errors) > 0:
					fmt.Fprintf(out, "%3d months | %s\n", o.TenureMonths, o.Errors[0])
				default:
					fmt.Fprintf(out, "%3d months | EMI %s | Interest %s | Total %s | Effective %s\n",
						o.TenureMonths, format.Currency(o.EMIAmount), format.Currency(o.TotalInterest),
						format.Currency(o.TotalAmount), format.Percent(o.EffectiveInterestRate))
				}
			}
			return nil
		},
	}
	c.Flags().Float64VarP(&principal, "principal", "p", 0, "loan principal")
	c.Flags().Float64VarP(&rate, "rate", "r", 0, "annual interest rate in percent")
	c.Flags().IntSliceVar(&tenures, "tenures", []int{12, 24, 36}, "tenures in months to compare")
	c.Flags().StringVar(&start, "start", "", "disbursement date ("+constants.DateLayout+"), defaults to today")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
