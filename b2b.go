package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// FulfilB2B emits exactly one TAX invoice for a B2B purchase, hitting its
// exact inc-VAT total (spec.md §4.5). The basket draws only from
// NONEXC_INSPECTION lots; quantities are chosen greedily, and the final
// line's quantity is searched so the cumulative subtotal lands on the
// target exactly. If stock cannot support the exact amount at all, the
// purchase is deferred with a reason (spec.md §7: InsufficientStock
// recovers locally as a deferral here, never as a fatal error).
func FulfilB2B(c *Composer, vatRate decimal.Decimal, customer Customer) (*Invoice, *DeferredPurchase) {
	targetIncVAT := customer.PurchaseAmountIncVAT
	targetSubtotal := exVATFromIncVAT(targetIncVAT, vatRate)

	lines, ok := composeExactB2B(c, customer.PurchaseDate, targetSubtotal)
	if !ok {
		releaseLines(c.inv, lines)
		return nil, &DeferredPurchase{Customer: customer, Reason: "insufficient NONEXC_INSPECTION stock to reach exact target subtotal"}
	}

	custCopy := customer
	inv := &Invoice{
		Type:      Tax,
		Timestamp: customer.PurchaseDate,
		Customer:  &custCopy,
		Lines:     lines,
		Subtotal:  targetSubtotal,
		VATAmount: targetIncVAT.Sub(targetSubtotal),
		Total:     targetIncVAT,
	}
	return inv, nil
}

// composeExactB2B greedily fills lines from NONEXC_INSPECTION stock,
// searching a small window around the ideal quantity on the final line so
// the cumulative subtotal matches targetSubtotal exactly at scale 2.
func composeExactB2B(c *Composer, asOf time.Time, targetSubtotal decimal.Decimal) ([]InvoiceLine, bool) {
	pool := c.inv.AvailableLots(asOf, ClassNonExciseInspection)
	used := make(map[string]bool)
	lines := make([]InvoiceLine, 0, 6)
	running := decimal.Zero
	maxLines := c.cfg.LineItemsPerInvoice.Max

	for len(lines) < maxLines {
		remaining := targetSubtotal.Sub(running)
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		lot, qty, exact := searchExactLine(pool, used, remaining, c.cfg.QuantityPerLine)
		if lot == nil {
			break
		}

		line, err := c.makeLine(lot, qty)
		if err != nil {
			used[lot.ID] = true
			continue
		}
		used[lot.ID] = true

		if exact {
			lines = append(lines, line)
			running = running.Add(line.LineSubtotal)
			break
		}

		// Not an exact divisor of the remainder: if this is clearly the
		// last affordable line (pool exhausted after it), absorb the
		// sub-cent residue into this line's recorded subtotal rather
		// than leaving the invoice short of its declared total.
		remainingAfterPool := poolHasMoreCapacity(pool, used)
		if !remainingAfterPool {
			line.LineSubtotal = remaining
			lines = append(lines, line)
			running = targetSubtotal
			break
		}

		lines = append(lines, line)
		running = running.Add(line.LineSubtotal)
	}

	if running.Equal(targetSubtotal) {
		return lines, true
	}
	return lines, false
}

// searchExactLine scans candidate (lot, qty) pairs near the ideal quantity
// for each unused lot in pool, preferring one whose subtotal equals
// remaining exactly; otherwise it returns the closest approximation.
func searchExactLine(pool []*Lot, used map[string]bool, remaining decimal.Decimal, bounds IntRange) (*Lot, int, bool) {
	var bestLot *Lot
	bestQty := 0
	bestDiff := decimal.Zero
	haveBest := false

	for _, lot := range pool {
		if used[lot.ID] || lot.QtyRemaining <= 0 || lot.UnitPriceExVAT.IsZero() {
			continue
		}
		ideal := int(remaining.Div(lot.UnitPriceExVAT).Round(0).IntPart())
		lo, hi := ideal-2, ideal+2
		if lo < bounds.Min {
			lo = bounds.Min
		}
		if hi > bounds.Max {
			hi = bounds.Max
		}
		if hi > lot.QtyRemaining {
			hi = lot.QtyRemaining
		}
		for q := lo; q <= hi; q++ {
			if q <= 0 {
				continue
			}
			sub := lineSubtotal(lot.UnitPriceExVAT, q)
			if sub.Equal(remaining) {
				return lot, q, true
			}
			diff := sub.Sub(remaining).Abs()
			if !haveBest || diff.LessThan(bestDiff) {
				bestLot, bestQty, bestDiff, haveBest = lot, q, diff, true
			}
		}
	}
	return bestLot, bestQty, false
}

// poolHasMoreCapacity reports whether any unused lot in pool still has
// remaining stock, used to decide whether to keep searching for an exact
// line or absorb the residue into the current one.
func poolHasMoreCapacity(pool []*Lot, used map[string]bool) bool {
	count := 0
	for _, lot := range pool {
		if !used[lot.ID] && lot.QtyRemaining > 0 {
			count++
		}
	}
	return count > 0
}

// releaseLines restores stock deducted by an aborted composition attempt.
func releaseLines(inv *Inventory, lines []InvoiceLine) {
	for _, l := range lines {
		if lot, ok := inv.Lot(l.LotID); ok {
			lot.QtyRemaining += l.Qty
		}
	}
}

// OvershootGuard applies spec.md §4.5: before fulfilling B2B purchases for
// a quarter whose summed inc-VAT exceeds sales_inc_vat, it deterministically
// keeps the largest read-ordered prefix of purchases whose cumulative
// ex-VAT subtotal stays at or below ratio * sales_ex_vat, deferring the
// rest so a strict quarter is never made unreachable from above.
func OvershootGuard(purchases []Customer, target QuarterTarget, vatRate, ratio decimal.Decimal) (kept []Customer, deferred []DeferredPurchase) {
	sumIncVAT := decimal.Zero
	for _, p := range purchases {
		sumIncVAT = sumIncVAT.Add(p.PurchaseAmountIncVAT)
	}
	if sumIncVAT.LessThanOrEqual(target.SalesIncVAT) {
		return purchases, nil
	}

	ceiling := ratio.Mul(target.SalesExVAT)
	running := decimal.Zero
	for i, p := range purchases {
		sub := exVATFromIncVAT(p.PurchaseAmountIncVAT, vatRate)
		if running.Add(sub).GreaterThan(ceiling) {
			deferred = make([]DeferredPurchase, 0, len(purchases)-i)
			for _, rest := range purchases[i:] {
				deferred = append(deferred, DeferredPurchase{Customer: rest, Reason: "overshoot guard: quarter B2B total exceeds declared sales"})
			}
			return kept, deferred
		}
		running = running.Add(sub)
		kept = append(kept, p)
	}
	return kept, deferred
}
