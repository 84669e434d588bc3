package ledger

import (
	"fmt"

	"github.com/sanadledger/ledger/rules"
	"github.com/shopspring/decimal"
)

// checkArithmetic verifies subtotal = Σ lines, vat = round2(subtotal*rate),
// total = subtotal + vat (spec.md §3, §8).
func checkArithmetic(inv *Invoice, vatRate decimal.Decimal) *Violation {
	wantSubtotal := sumSubtotals(inv.Lines)
	if !inv.Subtotal.Equal(wantSubtotal) {
		return &Violation{Rule: rules.ArithmeticConsistency, Subject: inv.Number,
			Text: fmt.Sprintf("subtotal %s does not match sum of lines %s", inv.Subtotal, wantSubtotal)}
	}
	wantVAT := vatFor(inv.Subtotal, vatRate)
	if !inv.VATAmount.Equal(wantVAT) && inv.Type != Tax {
		// TAX invoices derive VAT as a remainder against a declared inc-VAT
		// total (spec.md §4.5) rather than round2(subtotal*rate); only
		// SIMPLIFIED invoices are held to the direct formula.
		return &Violation{Rule: rules.ArithmeticConsistency, Subject: inv.Number,
			Text: fmt.Sprintf("vat amount %s does not match round2(subtotal*rate) %s", inv.VATAmount, wantVAT)}
	}
	if !inv.Total.Equal(inv.Subtotal.Add(inv.VATAmount)) {
		return &Violation{Rule: rules.ArithmeticConsistency, Subject: inv.Number,
			Text: "total does not equal subtotal + vat"}
	}
	return nil
}

// CheckQuarterClosure verifies a strict quarter's actual inc-VAT total
// closes within tolerance of its target (spec.md §4.6, §8).
func CheckQuarterClosure(report QuarterReport, tolerance decimal.Decimal) *Violation {
	if !report.Strict {
		return nil
	}
	if report.Variance.Abs().GreaterThan(tolerance) {
		return &Violation{Rule: rules.QuarterClosure, Subject: report.Label,
			Text: fmt.Sprintf("variance %s exceeds tolerance %s", report.Variance, tolerance)}
	}
	return nil
}
