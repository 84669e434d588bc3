package ledger

import (
	"fmt"

	"github.com/sanadledger/ledger/rules"
)

// checkClassificationMixing enforces excise exclusivity and the
// TAX-invoice-only-NONEXC_INSPECTION rule (spec.md §4.3, §8).
func checkClassificationMixing(inv *Invoice) *Violation {
	if inv.hasExciseLine() && len(inv.Lines) > 1 {
		return &Violation{Rule: rules.ClassificationMixing, Subject: inv.Number,
			Text: "excise-inspected lot shares an invoice with another line"}
	}
	if inv.Type == Tax {
		for _, l := range inv.Lines {
			if l.Classification != ClassNonExciseInspection {
				return &Violation{Rule: rules.ClassificationMixing, Subject: inv.Number,
					Text: fmt.Sprintf("tax invoice carries a %s line", l.Classification)}
			}
		}
	}
	return nil
}

// CheckLotSeparation verifies no invoice draws the same lot twice under a
// different line — the inverse failure mode of merging two lots together,
// and the one the composer's used-lot set exists to prevent (spec.md §4.3,
// §8).
func CheckLotSeparation(invoices []*Invoice) []Violation {
	var out []Violation
	for _, inv := range invoices {
		seen := make(map[string]bool, len(inv.Lines))
		for _, l := range inv.Lines {
			if seen[l.LotID] {
				out = append(out, Violation{Rule: rules.LotSeparation, Subject: inv.Number,
					Text: fmt.Sprintf("lot %s appears on more than one line", l.LotID)})
				continue
			}
			seen[l.LotID] = true
		}
	}
	return out
}
