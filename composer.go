package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Composer builds the line list for one invoice, honoring the
// classification-mixing, stock, and profitability rules of spec.md §4.3.
type Composer struct {
	inv *Inventory
	rng *rng
	cfg Config
}

// NewComposer constructs a Composer bound to one inventory and seeded
// generator; the Aligner owns both for the lifetime of a run (spec.md §5).
func NewComposer(inv *Inventory, r *rng, cfg Config) *Composer {
	return &Composer{inv: inv, rng: r, cfg: cfg}
}

// basketPool selects the eligible lot pool for an invoice type and
// exclusivity decision.
func (c *Composer) basketPool(invType InvoiceType, asOf time.Time, exclusiveExcise bool) []*Lot {
	switch {
	case invType == Tax:
		return c.inv.AvailableLots(asOf, ClassNonExciseInspection)
	case exclusiveExcise:
		return c.inv.AvailableLots(asOf, ClassExciseInspection)
	default:
		nonExc := c.inv.AvailableLots(asOf, ClassNonExciseInspection)
		outside := c.inv.AvailableLots(asOf, ClassNonExciseOutside)
		return append(append([]*Lot{}, nonExc...), outside...)
	}
}

// DecideExclusiveExcise draws whether a SIMPLIFIED invoice is excise-only,
// at the configured ratio (spec.md §4.3 "approximately 20%"). TAX invoices
// are never excise-exclusive (§4.3: B2B buys only NONEXC_INSPECTION).
func (c *Composer) DecideExclusiveExcise(invType InvoiceType) bool {
	if invType != Simplified {
		return false
	}
	return c.rng.Float64() < c.cfg.ExciseExclusiveRatio.InexactFloat64()
}

// pickLot chooses a lot from the pool weighted by remaining quantity,
// excluding ids already used on this invoice (spec.md §4.3 "MUST NOT
// select the same lot twice").
func (c *Composer) pickLot(pool []*Lot, used map[string]bool) *Lot {
	candidates := make([]*Lot, 0, len(pool))
	weights := make([]float64, 0, len(pool))
	for _, l := range pool {
		if used[l.ID] || l.QtyRemaining <= 0 {
			continue
		}
		candidates = append(candidates, l)
		weights = append(weights, float64(l.QtyRemaining))
	}
	idx := c.rng.pick(weights)
	if idx < 0 {
		return nil
	}
	return candidates[idx]
}

// lineCountFor draws a per-invoice line count, forced to 1 when the basket
// is excise-exclusive (spec.md §4.3).
func (c *Composer) lineCountFor(exclusiveExcise bool) int {
	if exclusiveExcise {
		return 1
	}
	return c.rng.intn(c.cfg.LineItemsPerInvoice.Min, c.cfg.LineItemsPerInvoice.Max)
}

// makeLine deducts qty from lot and materializes the InvoiceLine snapshot.
func (c *Composer) makeLine(lot *Lot, qty int) (InvoiceLine, error) {
	if err := c.inv.Deduct(lot.ID, qty); err != nil {
		return InvoiceLine{}, err
	}
	return InvoiceLine{
		LotID:           lot.ID,
		ItemDescription: lot.ItemDescription,
		Classification:  lot.Classification,
		Qty:             qty,
		UnitPriceExVAT:  lot.UnitPriceExVAT,
		UnitCostExVAT:   lot.UnitCostExVAT,
		LineSubtotal:    lineSubtotal(lot.UnitPriceExVAT, qty),
	}, nil
}

// ComposeByCount builds a basket of wantLines lines (or exactly 1 if
// exclusiveExcise), each with a quantity drawn from the configured
// per-line bounds and capped to the chosen lot's remaining stock. Bounded
// retries (ComposerRetryCap) drop exhausted lots from the pool and try
// again; ErrInsufficientStock propagates only once the pool cannot supply
// another distinct lot (spec.md §4.3).
func (c *Composer) ComposeByCount(invType InvoiceType, date time.Time, wantLines int, exclusiveExcise bool) ([]InvoiceLine, error) {
	if exclusiveExcise {
		wantLines = 1
	}
	pool := c.basketPool(invType, date, exclusiveExcise)
	used := make(map[string]bool, wantLines)
	lines := make([]InvoiceLine, 0, wantLines)

	for len(lines) < wantLines {
		attempts := 0
		var added bool
		for attempts < c.cfg.ComposerRetryCap {
			attempts++
			lot := c.pickLot(pool, used)
			if lot == nil {
				return lines, ErrInsufficientStock
			}
			qty := c.rng.intn(c.cfg.QuantityPerLine.Min, c.cfg.QuantityPerLine.Max)
			if qty > lot.QtyRemaining {
				qty = lot.QtyRemaining
			}
			if qty <= 0 {
				used[lot.ID] = true
				continue
			}
			line, err := c.makeLine(lot, qty)
			if err != nil {
				used[lot.ID] = true
				continue
			}
			used[lot.ID] = true
			lines = append(lines, line)
			added = true
			break
		}
		if !added {
			return lines, ErrInsufficientStock
		}
	}
	return lines, nil
}

// ComposeByAmount builds a basket whose ex-VAT subtotal approaches
// targetSubtotal, stopping once the running subtotal is within tolerance
// of the target or a further line would overshoot it (spec.md §4.4 step 4,
// used by the Sales Simulator). The basket still obeys excise exclusivity
// (if the first line drawn is excise, the basket is capped at one line).
func (c *Composer) ComposeByAmount(invType InvoiceType, date time.Time, targetSubtotal, tolerance decimal.Decimal, exclusiveExcise bool) ([]InvoiceLine, error) {
	pool := c.basketPool(invType, date, exclusiveExcise)
	used := make(map[string]bool)
	lines := make([]InvoiceLine, 0, 4)
	running := decimal.Zero
	maxLines := c.cfg.LineItemsPerInvoice.Max
	if exclusiveExcise {
		maxLines = 1
	}

	for len(lines) < maxLines {
		remaining := targetSubtotal.Sub(running)
		if remaining.LessThanOrEqual(tolerance) {
			break
		}

		attempts := 0
		var added bool
		for attempts < c.cfg.ComposerRetryCap {
			attempts++
			lot := c.pickLot(pool, used)
			if lot == nil {
				break
			}
			qty := qtyApproaching(remaining, lot.UnitPriceExVAT, c.cfg.QuantityPerLine)
			if qty > lot.QtyRemaining {
				qty = lot.QtyRemaining
			}
			if qty <= 0 {
				used[lot.ID] = true
				continue
			}
			if len(lines) > 0 && lineSubtotal(lot.UnitPriceExVAT, qty).GreaterThan(remaining) {
				// a further line from this lot would overshoot the target
				used[lot.ID] = true
				continue
			}
			line, err := c.makeLine(lot, qty)
			if err != nil {
				used[lot.ID] = true
				continue
			}
			used[lot.ID] = true
			lines = append(lines, line)
			running = running.Add(line.LineSubtotal)
			added = true
			break
		}
		if !added {
			break
		}
		if exclusiveExcise && lines[0].Classification == ClassExciseInspection {
			break
		}
	}

	if len(lines) == 0 {
		return nil, ErrInsufficientStock
	}
	return lines, nil
}

// qtyApproaching picks the quantity, within bounds, whose subtotal comes
// closest to (without exceeding, when possible) the remaining target.
func qtyApproaching(remaining, unitPrice decimal.Decimal, bounds IntRange) int {
	if unitPrice.IsZero() {
		return bounds.Min
	}
	ideal := remaining.Div(unitPrice).IntPart()
	q := int(ideal)
	if q < bounds.Min {
		q = bounds.Min
	}
	if q > bounds.Max {
		q = bounds.Max
	}
	return q
}
