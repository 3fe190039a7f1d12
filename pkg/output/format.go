// Package output provides utilities for formatting and displaying EMI schedules.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/microloan/pkg/constants"
	"github.com/iwvelando/microloan/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result loans.EMICalculationResult) {
	p := message.NewPrinter(language.English)
	summary := result.Summary

	_, _ = fmt.Fprintf(w, "--- EMI schedule for %d months ---\n", summary.TenureMonths)
	_, _ = p.Fprintf(w, "Principal: ₹%.2f | EMI: ₹%.2f | Total interest: ₹%.2f | Total: ₹%.2f | Effective rate: %.2f%%\n",
		summary.Principal, summary.EMIAmount, summary.TotalInterest, summary.TotalAmount, summary.EffectiveInterestRate)
	_, _ = fmt.Fprintf(w, "No. | Due date   | EMI           | Principal     | Interest      | Outstanding\n")
	_, _ = fmt.Fprintf(w, "___ | __________ | _____________ | _____________ | _____________ | _____________\n")
	for _, item := range result.Schedule {
		_, _ = p.Fprintf(w, "%3d | %s | ₹%.2f | ₹%.2f | ₹%.2f | ₹%.2f\n",
			item.EMINumber, item.DueDate.Format(constants.DateLayout),
			item.EMIAmount, item.PrincipalComponent, item.InterestComponent, item.OutstandingPrincipal)
	}
}

// CsvFormat writes the schedule in comma-separated value format.
func CsvFormat(w io.Writer, result loans.EMICalculationResult) {
	_, _ = io.WriteString(w, CsvString(result))
}

// CsvString renders the schedule as CSV, one row per installment.
func CsvString(result loans.EMICalculationResult) string {
	var b strings.Builder
	b.WriteString(`"emi_number","due_date","emi_amount","principal_component","interest_component","outstanding_principal"`)
	b.WriteString("\n")
	for _, item := range result.Schedule {
		fmt.Fprintf(&b, `"%d","%s","%.2f","%.2f","%.2f","%.2f"`,
			item.EMINumber, item.DueDate.Format(constants.DateLayout),
			item.EMIAmount, item.PrincipalComponent, item.InterestComponent, item.OutstandingPrincipal)
		b.WriteString("\n")
	}
	return b.String()
}
