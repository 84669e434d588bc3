package ledger

import (
	"fmt"

	"github.com/sanadledger/ledger/rules"
)

// CheckNumbering verifies that, within each invoice type, sequence numbers
// form a contiguous ascending run (spec.md §6, §8).
func CheckNumbering(invoices []*Invoice) []Violation {
	var out []Violation
	bySeq := map[InvoiceType][]int{}
	for _, inv := range invoices {
		seq, ok := parseSequence(inv.Number)
		if !ok {
			out = append(out, Violation{Rule: rules.NumberingMonotonic, Subject: inv.Number,
				Text: "invoice number does not carry a parseable sequence"})
			continue
		}
		bySeq[inv.Type] = append(bySeq[inv.Type], seq)
	}
	for t, seqs := range bySeq {
		for i := 1; i < len(seqs); i++ {
			if seqs[i] != seqs[i-1]+1 {
				out = append(out, Violation{Rule: rules.NumberingMonotonic, Subject: t.String(),
					Text: fmt.Sprintf("sequence gap between %d and %d", seqs[i-1], seqs[i])})
			}
		}
	}
	return out
}
