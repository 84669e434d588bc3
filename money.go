package ledger

import "github.com/shopspring/decimal"

// moneyScale is the fixed decimal scale for every value on the money path.
const moneyScale = 2

// round2 rounds an amount half-up to moneyScale. It is the only place
// a monetary value is allowed to change magnitude through rounding.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyScale)
}

// lineSubtotal computes unit price times quantity, rounded at scale 2.
// This is the one multiplication site on the money path; spec.md §3
// requires unit_price * qty to be rounded to scale 2 before summation.
func lineSubtotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return round2(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
}

// vatFor computes VAT on a subtotal at the given rate, rounded half-up.
func vatFor(subtotal decimal.Decimal, vatRate decimal.Decimal) decimal.Decimal {
	return round2(subtotal.Mul(vatRate))
}

// sumSubtotals adds a set of already-rounded line subtotals.
func sumSubtotals(lines []InvoiceLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineSubtotal)
	}
	return total
}

// exVATFromIncVAT backs out the ex-VAT amount from an inc-VAT total, the
// "÷ 1.15" site spec.md §9 calls out as the second most error-prone
// computation on the money path. The division is performed at high
// precision (decimal.Division default DivisionPrecision) and only the
// final value is rounded to scale 2.
func exVATFromIncVAT(incVAT decimal.Decimal, vatRate decimal.Decimal) decimal.Decimal {
	onePlusRate := decimal.NewFromInt(1).Add(vatRate)
	return round2(incVAT.Div(onePlusRate))
}
