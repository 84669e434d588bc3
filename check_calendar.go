package ledger

import (
	"fmt"

	"github.com/sanadledger/ledger/rules"
)

// checkCalendarClosed enforces that an invoice was never emitted on a
// Friday or a configured holiday (spec.md §4.1, §8).
func checkCalendarClosed(inv *Invoice, holidays map[civilDate]bool) *Violation {
	if !isWorkingDay(inv.Timestamp, holidays) {
		return &Violation{Rule: rules.CalendarClosed, Subject: inv.Number,
			Text: fmt.Sprintf("emitted on closed date %d-%02d-%02d", civilOf(inv.Timestamp).Year, civilOf(inv.Timestamp).Month, civilOf(inv.Timestamp).Day)}
	}
	return nil
}
