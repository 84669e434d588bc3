package ledger

import (
	"fmt"

	"github.com/sanadledger/ledger/rules"
)

// CheckLotIntegrity verifies spec.md §8's lot-level invariants after a
// full run: quantity never goes negative or above what was imported.
func CheckLotIntegrity(inv *Inventory) []Violation {
	var out []Violation
	for id, l := range inv.byID {
		if l.QtyRemaining < 0 || l.QtyRemaining > l.QtyImported {
			out = append(out, Violation{Rule: rules.LotNonNegative, Subject: id,
				Text: fmt.Sprintf("qty_remaining %d outside [0, %d]", l.QtyRemaining, l.QtyImported)})
		}
	}
	return out
}
