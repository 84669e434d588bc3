package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// isPeakDay reports whether d is a day refinement should prefer for +1
// adjustments: Thursday, a salary day, or inside the quarter's final week
// (spec.md §4.7).
func isPeakDay(d, periodEnd time.Time) bool {
	if d.Weekday() == time.Thursday {
		return true
	}
	switch d.Day() {
	case 27, 1, 10:
		return true
	}
	return daysBetween(d, periodEnd) <= 7
}

// refineCandidate is one scored +1/-1 adjustment considered during a pass.
type refineCandidate struct {
	invoice  *Invoice
	lineIdx  int
	delta    int // +1 or -1
	newDelta decimal.Decimal
}

// Refine runs the ±1-quantity convergence loop of spec.md §4.7 against
// target (the quarter's declared inc-VAT total), stopping once the
// remaining variance is within tolerance or the iteration cap is spent.
// It mutates invoices and inv in place and returns the final variance.
func Refine(invoices []*Invoice, inv *Inventory, target, vatRate, tolerance decimal.Decimal, iterCap int, periodEnd time.Time) decimal.Decimal {
	for iter := 0; iter < iterCap; iter++ {
		delta := target.Sub(sumTotals(invoices))
		if delta.Abs().LessThanOrEqual(tolerance) {
			return delta
		}

		var best *refineCandidate
		for _, candAdvance := range []int{1, -1} {
			if candAdvance == 1 && delta.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if candAdvance == -1 && delta.GreaterThanOrEqual(decimal.Zero) {
				continue
			}
			for _, c := range scanCandidates(invoices, inv, candAdvance, periodEnd, vatRate, target) {
				if best == nil || c.newDelta.Abs().LessThan(best.newDelta.Abs()) {
					cc := c
					best = &cc
				}
			}
		}
		if best == nil {
			return target.Sub(sumTotals(invoices))
		}
		applyRefineCandidate(best, inv, vatRate)
	}
	return target.Sub(sumTotals(invoices))
}

// scanCandidates finds every eligible line for a +1 or -1 adjustment and
// scores the resulting delta, so the caller can pick the one that brings
// |delta| closest to zero (spec.md §4.7 step 2).
func scanCandidates(invoices []*Invoice, inv *Inventory, advance int, periodEnd time.Time, vatRate, target decimal.Decimal) []refineCandidate {
	var out []refineCandidate
	currentTotal := sumTotals(invoices)

	for _, iv := range invoices {
		if iv.Type != Simplified {
			continue // B2B totals are fixed by contract; only cash invoices flex
		}
		peak := isPeakDay(iv.Timestamp, periodEnd)
		if advance == 1 && !peak {
			continue
		}
		if advance == -1 && peak {
			continue
		}

		lineIdx := -1
		if advance == 1 {
			for i, l := range iv.Lines {
				lot, ok := inv.Lot(l.LotID)
				if !ok || lot.QtyRemaining <= 0 {
					continue
				}
				if lineIdx == -1 || l.LineSubtotal.GreaterThan(iv.Lines[lineIdx].LineSubtotal) {
					lineIdx = i
				}
			}
		} else {
			for i, l := range iv.Lines {
				if l.Qty <= 1 {
					continue
				}
				if lineIdx == -1 || l.LineSubtotal.GreaterThan(iv.Lines[lineIdx].LineSubtotal) {
					lineIdx = i
				}
			}
		}
		if lineIdx == -1 {
			continue
		}

		newSubtotal := lineSubtotal(iv.Lines[lineIdx].UnitPriceExVAT, iv.Lines[lineIdx].Qty+advance)
		deltaSubtotal := newSubtotal.Sub(iv.Lines[lineIdx].LineSubtotal)
		newInvSubtotal := iv.Subtotal.Add(deltaSubtotal)
		newInvTotal := newInvSubtotal.Add(vatFor(newInvSubtotal, vatRate))
		deltaTotal := newInvTotal.Sub(iv.Total)
		newDelta := target.Sub(currentTotal.Add(deltaTotal))

		out = append(out, refineCandidate{invoice: iv, lineIdx: lineIdx, delta: advance, newDelta: newDelta})
	}
	return out
}

// applyRefineCandidate commits a scored adjustment: mutates the lot, the
// line, and re-derives the invoice's totals (spec.md §4.7 step 2). A line
// whose quantity would drop to zero is dropped entirely rather than kept
// at quantity 0 (spec.md §4.7 step 3).
func applyRefineCandidate(c *refineCandidate, inv *Inventory, vatRate decimal.Decimal) {
	iv := c.invoice
	l := &iv.Lines[c.lineIdx]
	lot, _ := inv.Lot(l.LotID)

	if c.delta > 0 {
		lot.QtyRemaining--
	} else {
		lot.QtyRemaining++
	}
	l.Qty += c.delta
	l.LineSubtotal = lineSubtotal(l.UnitPriceExVAT, l.Qty)

	if l.Qty < 1 {
		iv.Lines = append(iv.Lines[:c.lineIdx], iv.Lines[c.lineIdx+1:]...)
	}
	iv.recomputeTotals(vatRate)
}

// sumTotals adds every invoice's inc-VAT total.
func sumTotals(invoices []*Invoice) decimal.Decimal {
	sum := decimal.Zero
	for _, iv := range invoices {
		sum = sum.Add(iv.Total)
	}
	return sum
}
