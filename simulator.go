package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// dayOfMonthSpike returns the salary-day multiplier for day-of-month spikes
// (spec.md §4.4 step 1).
func dayOfMonthSpike(day int) float64 {
	switch day {
	case 27:
		return 1.5
	case 1:
		return 1.2
	case 10:
		return 1.1
	default:
		return 1.0
	}
}

// weekdayWeight returns the day-of-week multiplier (spec.md §4.4 step 1).
// Friday is excluded upstream by is_working_day and never reaches here.
func weekdayWeight(d time.Time) float64 {
	switch d.Weekday() {
	case time.Thursday:
		return 1.5
	case time.Saturday:
		return 1.3
	case time.Sunday:
		return 1.2
	default:
		return 1.0
	}
}

// seasonalBoost applies the Ramadan/Sha'ban calendar boost.
func seasonalBoost(d time.Time) float64 {
	if isRamadan(d) {
		return 2.5
	}
	if isShaaban(d) {
		return 2.0
	}
	return 1.0
}

// endOfQuarterPush applies the last-week/last-two-weeks push toward a
// quarter's end.
func endOfQuarterPush(d, periodEnd time.Time) float64 {
	daysLeft := daysBetween(d, periodEnd)
	switch {
	case daysLeft <= 7:
		return 1.8
	case daysLeft <= 14:
		return 1.4
	default:
		return 1.0
	}
}

// dayWeight combines every factor of spec.md §4.4 step 1 into one weight.
func dayWeight(d time.Time, target QuarterTarget) float64 {
	return weekdayWeight(d) * dayOfMonthSpike(d.Day()) * seasonalBoost(d) * endOfQuarterPush(d, target.PeriodEnd)
}

// Simulator drives cash-invoice generation for one quarter (spec.md §4.4).
// Sequence numbers are not assigned here: spec.md §5 requires numbering to
// happen once, at the end of alignment, in chronological traversal order.
type Simulator struct {
	composer *Composer
	rng      *rng
	cfg      Config
}

// NewSimulator binds a Simulator to the Aligner's shared composer and
// seeded generator.
func NewSimulator(composer *Composer, r *rng, cfg Config) *Simulator {
	return &Simulator{composer: composer, rng: r, cfg: cfg}
}

// invoiceSizeMean derives the adaptive per-invoice mean from the remaining
// gap and remaining working days, scaled for peak days and the
// end-of-quarter final week (spec.md §4.4 step 3).
func invoiceSizeMean(remainingGap decimal.Decimal, remainingDays int, isPeakDay bool, d, periodEnd time.Time) float64 {
	if remainingDays <= 0 {
		remainingDays = 1
	}
	invoicesPerDay := 6.0
	mean := remainingGap.InexactFloat64() / (float64(remainingDays) * invoicesPerDay)
	if isPeakDay {
		mean *= 1.5
	}
	if daysBetween(d, periodEnd) <= 7 {
		mean *= 1.5
	}
	if mean < 500 {
		mean = 500
	}
	if mean > 10000 {
		mean = 10000
	}
	return mean
}

// invoiceHour draws a weighted random hour in [9, 22], peaking at lunch
// (12-14) and early evening (18-20) (spec.md §4.4 step 5).
func (s *Simulator) invoiceHour() int {
	weights := make([]float64, 0, 14)
	hours := make([]int, 0, 14)
	for h := 9; h <= 22; h++ {
		w := 1.0
		if h >= 12 && h <= 14 {
			w = 2.0
		}
		if h >= 18 && h <= 20 {
			w = 1.8
		}
		hours = append(hours, h)
		weights = append(weights, w)
	}
	idx := s.rng.pick(weights)
	if idx < 0 {
		return 12
	}
	return hours[idx]
}

// GenerateDay emits as many cash invoices as the day's share of the gap
// calls for, each sized from a truncated normal distribution, timestamped
// with a weighted random hour (spec.md §4.4 steps 2-5). It returns the
// invoices produced and the ex-VAT subtotal they consumed, never exceeding
// dayTargetExVAT by more than one invoice's overshoot.
func (s *Simulator) GenerateDay(d time.Time, dayTargetExVAT decimal.Decimal, remainingGap decimal.Decimal, remainingDays int, isPeakDay bool, periodEnd time.Time) ([]*Invoice, decimal.Decimal) {
	var invoices []*Invoice
	produced := decimal.Zero
	for produced.LessThan(dayTargetExVAT) {
		target := dayTargetExVAT.Sub(produced)
		mean := invoiceSizeMean(remainingGap, remainingDays, isPeakDay, d, periodEnd)
		size := s.rng.normTruncated(mean, 0.3, 500, 10000)
		sizeDec := decimal.NewFromFloat(size)
		if sizeDec.GreaterThan(target) {
			sizeDec = target
		}
		exclusive := s.composer.DecideExclusiveExcise(Simplified)
		lines, err := s.composer.ComposeByAmount(Simplified, d, sizeDec, decimal.NewFromFloat(5.0), exclusive)
		if err != nil {
			break
		}
		ts := atLocalTime(d, s.invoiceHour(), s.rng.intn(0, 59))
		inv := &Invoice{
			Type:      Simplified,
			Timestamp: ts,
			Lines:     lines,
		}
		inv.recomputeTotals(s.cfg.VATRate)
		inv.QRPayload = buildQRPayload(s.cfg.SellerName, s.cfg.SellerVATNumber, ts,
			inv.VATAmount.StringFixed(2), inv.Total.StringFixed(2))
		invoices = append(invoices, inv)
		produced = produced.Add(inv.Subtotal)

		if len(invoices) > s.cfg.ComposerRetryCap {
			break
		}
	}
	return invoices, produced
}
