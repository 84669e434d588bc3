package ledger

import (
	"fmt"

	"github.com/sanadledger/ledger/rules"
)

// Violation names one failed invariant against a concrete subject (an
// invoice number, a lot id, a quarter label), mirroring speedata/einvoice's
// ValidationError shape but kept as a plain value so a QuarterReport can
// carry many of them without implementing the error interface itself.
type Violation struct {
	Rule    rules.Rule
	Subject string
	Text    string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Rule.Code, v.Subject, v.Text)
}

// CheckInvoice runs every per-invoice invariant from spec.md §8 and
// returns the violations found, if any.
func CheckInvoice(inv *Invoice, cfg Config, holidays map[civilDate]bool) []Violation {
	var out []Violation

	if v := checkArithmetic(inv, cfg.VATRate); v != nil {
		out = append(out, *v)
	}
	out = append(out, checkPriceFidelity(inv)...)
	out = append(out, checkProfitability(inv)...)
	if v := checkClassificationMixing(inv); v != nil {
		out = append(out, *v)
	}
	if v := checkCalendarClosed(inv, holidays); v != nil {
		out = append(out, *v)
	}
	return out
}

// CheckLedger runs CheckInvoice over every invoice plus the cross-invoice
// invariants (lot separation and sequence-numbering) and returns every
// violation found. Used by the validate subcommand to re-check a ledger
// that was already written to disk, where holidays may be unavailable
// (an empty or nil slice still rejects Fridays but checks no holiday dates).
func CheckLedger(invoices []*Invoice, cfg Config, holidays []Holiday) []Violation {
	holidayMap := holidaySet(holidays)

	var out []Violation
	for _, inv := range invoices {
		out = append(out, CheckInvoice(inv, cfg, holidayMap)...)
	}
	out = append(out, CheckLotSeparation(invoices)...)
	out = append(out, CheckNumbering(invoices)...)
	return out
}
