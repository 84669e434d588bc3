package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Aligner owns the inventory, the single seeded generator, and the
// numbering state for the lifetime of a run, driving the per-quarter state
// machine of spec.md §4.6.
type Aligner struct {
	inv      *Inventory
	rng      *rng
	cfg      Config
	holidays map[civilDate]bool
	num      *Numberer
}

// NewAligner constructs the run-owned state: one inventory, one seeded
// generator, one numbering sequence pair (spec.md §5, §9).
func NewAligner(inv *Inventory, cfg Config, holidays []Holiday) *Aligner {
	return &Aligner{
		inv:      inv,
		rng:      newRNG(cfg.RandomSeed),
		cfg:      cfg,
		holidays: holidaySet(holidays),
		num:      NewNumberer(cfg.InvoicePrefix),
	}
}

// pendingInvoice tracks one generated invoice alongside its original
// emission order, so the final numbering pass can break timestamp ties
// deterministically (spec.md §5).
type pendingInvoice struct {
	inv   *Invoice
	order int
}

// RunQuarter drives one quarter through B2B fulfilment, cash generation,
// refinement, and verification (spec.md §4.6), returning the finalized,
// numbered invoices and a summary report.
func (a *Aligner) RunQuarter(target QuarterTarget, customers []Customer) (QuarterReport, []*Invoice) {
	composer := NewComposer(a.inv, a.rng, a.cfg)
	report := QuarterReport{Label: target.Label, TargetIncVAT: target.SalesIncVAT, Strict: target.Strict}

	// --- B2B phase ---
	inScope := make([]Customer, 0)
	for _, c := range customers {
		if !c.PurchaseDate.Before(target.PeriodStart) && !c.PurchaseDate.After(target.PeriodEnd) {
			inScope = append(inScope, c)
		}
	}
	kept, deferred := OvershootGuard(inScope, target, a.cfg.VATRate, a.cfg.OvershootGuardRatio)
	report.Deferred = append(report.Deferred, deferred...)

	var pending []pendingInvoice
	order := 0
	b2bSubtotal, b2bTotal := decimal.Zero, decimal.Zero
	for _, c := range kept {
		inv, defrd := FulfilB2B(composer, a.cfg.VATRate, c)
		if defrd != nil {
			report.Deferred = append(report.Deferred, *defrd)
			report.Events.InsufficientStock++
			continue
		}
		pending = append(pending, pendingInvoice{inv: inv, order: order})
		order++
		b2bSubtotal = b2bSubtotal.Add(inv.Subtotal)
		b2bTotal = b2bTotal.Add(inv.Total)
	}

	// --- Cash generation phase ---
	rEx := target.SalesExVAT.Sub(b2bSubtotal)
	simulator := NewSimulator(composer, a.rng, a.cfg)
	workingDays := workingDaysIn(target.PeriodStart, target.PeriodEnd, a.holidays)

	theta := a.cfg.AlignmentStrictTolerance
	if !target.Strict {
		theta = decimal.NewFromFloat(5000)
	}

	for i, d := range workingDays {
		if rEx.LessThanOrEqual(theta) {
			break
		}
		remainingDays := len(workingDays) - i
		w := make([]float64, 0, remainingDays)
		totalW := 0.0
		for _, rd := range workingDays[i:] {
			ww := dayWeight(rd, target)
			w = append(w, ww)
			totalW += ww
		}
		if totalW <= 0 {
			break
		}
		dayShare := rEx.Mul(decimal.NewFromFloat(w[0] / totalW))
		if !target.Strict && rEx.GreaterThan(target.SalesExVAT.Mul(decimal.NewFromFloat(1.10))) {
			break
		}

		invs, produced := simulator.GenerateDay(d, dayShare, rEx, remainingDays, isPeakDay(d, target.PeriodEnd), target.PeriodEnd)
		for _, iv := range invs {
			pending = append(pending, pendingInvoice{inv: iv, order: order})
			order++
		}
		rEx = rEx.Sub(produced)
	}

	invoices := make([]*Invoice, 0, len(pending))
	for _, p := range pending {
		invoices = append(invoices, p.inv)
	}

	// --- Refinement phase ---
	Refine(invoices, a.inv, target.SalesIncVAT, a.cfg.VATRate, a.cfg.RefinementCoarseTolerance, a.cfg.RefinementIterationCap, target.PeriodEnd)
	if target.Strict {
		Refine(invoices, a.inv, target.SalesIncVAT, a.cfg.VATRate, a.cfg.RefinementFineTolerance, a.cfg.RefinementIterationCap, target.PeriodEnd)
	}

	actual := sumTotals(invoices)
	variance := target.SalesIncVAT.Sub(actual)

	// --- Non-convergence fallback ---
	if target.Strict && variance.Abs().GreaterThan(a.cfg.AlignmentStrictTolerance) {
		if balancing := a.synthesizeBalancingInvoice(target, variance); balancing != nil {
			pending = append(pending, pendingInvoice{inv: balancing, order: order})
			order++
			invoices = append(invoices, balancing)
			report.BalancingInvoiceUsed = true
			actual = sumTotals(invoices)
			variance = target.SalesIncVAT.Sub(actual)
		}
	}

	// --- Numbering (spec.md §5: assigned once, at the end, by date then
	// emission order) ---
	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].inv.Timestamp.Equal(pending[j].inv.Timestamp) {
			return pending[i].inv.Timestamp.Before(pending[j].inv.Timestamp)
		}
		return pending[i].order < pending[j].order
	})
	invoices = invoices[:0]
	for _, p := range pending {
		p.inv.Number = a.num.Next(p.inv.Type, p.inv.Timestamp)
		invoices = append(invoices, p.inv)
	}

	// --- Verification ---
	for _, iv := range invoices {
		report.Violations = append(report.Violations, CheckInvoice(iv, a.cfg, a.holidays)...)
	}
	report.Violations = append(report.Violations, CheckLotSeparation(invoices)...)
	report.Violations = append(report.Violations, CheckLotIntegrity(a.inv)...)
	report.Violations = append(report.Violations, CheckNumbering(invoices)...)

	report.ActualIncVAT = actual
	report.Variance = variance
	if !target.SalesIncVAT.IsZero() {
		report.CoverageRatio = actual.Div(target.SalesIncVAT)
	}
	if v := CheckQuarterClosure(report, a.cfg.AlignmentStrictTolerance); v != nil {
		report.Violations = append(report.Violations, *v)
	}

	return report, invoices
}

// synthesizeBalancingInvoice emits the single fallback invoice of spec.md
// §4.6: pick any eligible lot, buy enough of it (at its own fixed price) to
// close the remaining variance, rounding half-up on the final line.
func (a *Aligner) synthesizeBalancingInvoice(target QuarterTarget, variance decimal.Decimal) *Invoice {
	pool := a.inv.AvailableLots(target.PeriodEnd, ClassUnknown)
	if len(pool) == 0 {
		return nil
	}
	targetIncVAT := variance
	if targetIncVAT.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	targetSubtotal := exVATFromIncVAT(targetIncVAT, a.cfg.VATRate)

	var lot *Lot
	for _, l := range pool {
		if l.Classification == ClassUnknown {
			continue
		}
		if lot == nil || (lot.Classification == ClassExciseInspection && l.Classification != ClassExciseInspection) {
			lot = l
		}
	}
	if lot == nil {
		return nil
	}
	qty := int(targetSubtotal.Div(lot.UnitPriceExVAT).Round(0).IntPart())
	if qty < 1 {
		qty = 1
	}
	if qty > lot.QtyRemaining {
		qty = lot.QtyRemaining
	}
	if qty < 1 {
		return nil
	}
	if err := a.inv.Deduct(lot.ID, qty); err != nil {
		return nil
	}

	line := InvoiceLine{
		LotID:           lot.ID,
		ItemDescription: lot.ItemDescription,
		Classification:  lot.Classification,
		Qty:             qty,
		UnitPriceExVAT:  lot.UnitPriceExVAT,
		UnitCostExVAT:   lot.UnitCostExVAT,
		LineSubtotal:    lineSubtotal(lot.UnitPriceExVAT, qty),
	}
	ts := atLocalTime(target.PeriodEnd, 18, 0)
	inv := &Invoice{Type: Simplified, Timestamp: ts, Lines: []InvoiceLine{line}}
	inv.recomputeTotals(a.cfg.VATRate)
	inv.QRPayload = buildQRPayload(a.cfg.SellerName, a.cfg.SellerVATNumber, ts, inv.VATAmount.StringFixed(2), inv.Total.StringFixed(2))
	return inv
}

// earliestPeriodStart returns the earliest period_start among targets, the
// quarter spec.md §3 documents an activation-delay override for (0 days,
// to avoid stock starvation in the first quarter).
func earliestPeriodStart(targets []QuarterTarget) time.Time {
	var earliest time.Time
	for i, t := range targets {
		if i == 0 || t.PeriodStart.Before(earliest) {
			earliest = t.PeriodStart
		}
	}
	return earliest
}

// applyActivationDelays draws each lot's stock_date via the run's single
// seeded generator (spec.md §3, §9), overriding the delay to 0 for lots
// imported before earliestStart (the earliest quarter's period_start) so
// that quarter is not starved of stock.
func applyActivationDelays(lots []Lot, cfg Config, r *rng, earliestStart time.Time) []Lot {
	out := make([]Lot, len(lots))
	for i, l := range lots {
		delay := r.intn(cfg.LotActivationDays.Min, cfg.LotActivationDays.Max)
		if !earliestStart.IsZero() && l.ImportDate.Before(earliestStart) {
			delay = 0
		}
		l.StockDate = l.ImportDate.AddDate(0, 0, delay)
		out[i] = l
	}
	return out
}

// workingDaysIn enumerates every working day in [start, end].
func workingDaysIn(start, end time.Time, holidays map[civilDate]bool) []time.Time {
	out := make([]time.Time, 0)
	for _, d := range dateRange(start, end) {
		if isWorkingDay(d, holidays) {
			out = append(out, d)
		}
	}
	return out
}

// RunReportFor reconciles every quarter in order, accumulating a run-wide
// report. Quarters are processed chronologically so the shared Numberer
// produces one contiguous ascending sequence per invoice type across the
// whole run (spec.md §5).
func RunReportFor(a *Aligner, targets []QuarterTarget, customers []Customer) (RunReport, []*Invoice) {
	var run RunReport
	var all []*Invoice
	for _, t := range targets {
		report, invoices := a.RunQuarter(t, customers)
		run.Quarters = append(run.Quarters, report)
		all = append(all, invoices...)
	}
	return run, all
}

// Reconcile is the top-level entry point: given lots, holidays, B2B
// customers, quarter targets, and a configuration, it produces the full
// invoice ledger and a run report (spec.md §1, §2 control flow).
func Reconcile(lots []Lot, holidays []Holiday, customers []Customer, targets []QuarterTarget, cfg Config) (RunReport, []*Invoice, error) {
	if cfg.PricingPolicy != PricingLotPrice {
		return RunReport{}, nil, ErrUnsupportedPricingPolicy
	}
	inv := NewInventory()
	aligner := NewAligner(inv, cfg, holidays)
	inv.Load(applyActivationDelays(lots, cfg, aligner.rng, earliestPeriodStart(targets)))

	run, invoices := RunReportFor(aligner, targets, customers)

	for _, q := range run.Quarters {
		if q.Strict && len(q.Violations) > 0 {
			return run, invoices, &AlignmentError{Quarter: q.Label, Kind: KindInvariantViolation, Violations: q.Violations}
		}
	}
	return run, invoices, nil
}
