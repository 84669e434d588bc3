package ledger

import (
	"fmt"

	"github.com/sanadledger/ledger/rules"
	"github.com/shopspring/decimal"
)

// checkPriceFidelity verifies every line's unit price is non-negative and,
// outside TAX invoices, that its LineSubtotal equals round2(price*qty). It
// sees only the invoice, so it does not compare the unit price against the
// originating lot's catalog price.
func checkPriceFidelity(inv *Invoice) []Violation {
	var out []Violation
	for _, l := range inv.Lines {
		if !l.UnitPriceExVAT.GreaterThanOrEqual(decimal.Zero) {
			out = append(out, Violation{Rule: rules.PriceFidelity, Subject: inv.Number,
				Text: fmt.Sprintf("lot %s: negative unit price", l.LotID)})
		}
		expected := lineSubtotal(l.UnitPriceExVAT, l.Qty)
		if !l.LineSubtotal.Equal(expected) && inv.Type != Tax {
			// TAX invoices tolerate the B2B absorbing-line exception:
			// composeExactB2B may override the final line's subtotal to
			// close a sub-cent arithmetic residue against a fixed target.
			out = append(out, Violation{Rule: rules.PriceFidelity, Subject: inv.Number,
				Text: fmt.Sprintf("lot %s: line subtotal %s does not equal round2(price*qty) %s", l.LotID, l.LineSubtotal, expected)})
		}
	}
	return out
}

// checkProfitability verifies no line sold below its lot's cost (spec.md §8).
func checkProfitability(inv *Invoice) []Violation {
	var out []Violation
	for _, l := range inv.Lines {
		if l.UnitPriceExVAT.LessThan(l.UnitCostExVAT) {
			out = append(out, Violation{Rule: rules.Profitability, Subject: inv.Number,
				Text: fmt.Sprintf("lot %s: price %s below cost %s", l.LotID, l.UnitPriceExVAT, l.UnitCostExVAT)})
		}
	}
	return out
}
