package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Inventory is a lot-addressed FIFO store with time-gated activation and
// per-lot pricing (spec.md §4.2). Grounded on the pack's beancount-style
// Inventory (map of commodity/item to a slice of lots,
// other_examples/...-ledger-inventory.go.go) and the FIFO-sorted
// LotRegistry of frankbraun-ledger-go
// (other_examples/...-ledger-lot_test.go.go).
type Inventory struct {
	byID   map[string]*Lot
	byItem map[string][]*Lot // FIFO-ordered by stock_date, then import_date
}

// NewInventory constructs an empty store.
func NewInventory() *Inventory {
	return &Inventory{
		byID:   make(map[string]*Lot),
		byItem: make(map[string][]*Lot),
	}
}

// Load ingests pre-parsed lot records and initializes qty_remaining =
// qty_imported (spec.md §4.2). Lots failing the price >= cost invariant
// are loaded (so Lot lookups still resolve them for reporting) but never
// returned by AvailableLots, so they can never be selected.
func (inv *Inventory) Load(lots []Lot) {
	for i := range lots {
		l := lots[i]
		l.QtyRemaining = l.QtyImported
		inv.byID[l.ID] = &l
		inv.byItem[l.ItemDescription] = append(inv.byItem[l.ItemDescription], &l)
	}
	for item, ls := range inv.byItem {
		sort.SliceStable(ls, func(i, j int) bool {
			if !ls[i].StockDate.Equal(ls[j].StockDate) {
				return ls[i].StockDate.Before(ls[j].StockDate)
			}
			return ls[i].ImportDate.Before(ls[j].ImportDate)
		})
		inv.byItem[item] = ls
	}
}

// LotsForItem returns every lot matching the item description, FIFO-ordered.
func (inv *Inventory) LotsForItem(itemDescription string) []*Lot {
	return inv.byItem[itemDescription]
}

// Lot performs an O(1) lookup by lot id.
func (inv *Inventory) Lot(id string) (*Lot, bool) {
	l, ok := inv.byID[id]
	return l, ok
}

// AvailableLots returns lots active as of asOf (stock_date <= asOf) with
// remaining stock, optionally filtered by classification. A nil
// classification filter (pass ClassUnknown) returns every eligible lot.
//
// The result is sorted by lot ID before it's returned: byItem is keyed by
// item description, and ranging a Go map visits keys in randomized order,
// so an unsorted result would hand every seeded draw over this pool
// (composer.pickLot, b2b.searchExactLine, synthesizeBalancingInvoice) a
// different lot ordering on every run despite an identical seed.
func (inv *Inventory) AvailableLots(asOf time.Time, classification Classification) []*Lot {
	out := make([]*Lot, 0)
	for _, ls := range inv.byItem {
		for _, l := range ls {
			if l.QtyRemaining <= 0 {
				continue
			}
			if l.StockDate.After(asOf) {
				continue
			}
			if !l.profitable() {
				continue
			}
			if classification != ClassUnknown && l.Classification != classification {
				continue
			}
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Deduct decrements qty_remaining for a single lot.
func (inv *Inventory) Deduct(lotID string, qty int) error {
	l, ok := inv.byID[lotID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLot, lotID)
	}
	if qty > l.QtyRemaining {
		return fmt.Errorf("%w: lot %s has %d, requested %d", ErrInsufficientStock, lotID, l.QtyRemaining, qty)
	}
	l.QtyRemaining -= qty
	return nil
}

// FIFODeduction is one (lot, qty taken, price, cost) step of a deduct_fifo
// span (spec.md §4.2).
type FIFODeduction struct {
	LotID          string
	QtyTaken       int
	UnitPriceExVAT decimal.Decimal
	UnitCostExVAT  decimal.Decimal
}

// DeductFIFO spans multiple lots of itemDescription in FIFO order to
// satisfy qty. It fails with ErrInsufficientStock if the aggregate across
// available lots is less than qty, with no partial effect: all deductions
// are computed first and applied only once the whole span is known to
// succeed (spec.md §4.2 "transactional at the inventory level").
func (inv *Inventory) DeductFIFO(itemDescription string, qty int, asOf time.Time) ([]FIFODeduction, error) {
	candidates := make([]*Lot, 0)
	for _, l := range inv.byItem[itemDescription] {
		if l.QtyRemaining <= 0 || l.StockDate.After(asOf) || !l.profitable() {
			continue
		}
		candidates = append(candidates, l)
	}

	remaining := qty
	plan := make([]FIFODeduction, 0, len(candidates))
	for _, l := range candidates {
		if remaining <= 0 {
			break
		}
		take := l.QtyRemaining
		if take > remaining {
			take = remaining
		}
		plan = append(plan, FIFODeduction{
			LotID:          l.ID,
			QtyTaken:       take,
			UnitPriceExVAT: l.UnitPriceExVAT,
			UnitCostExVAT:  l.UnitCostExVAT,
		})
		remaining -= take
	}

	if remaining > 0 {
		return nil, fmt.Errorf("%w: item %q needs %d more units across %d lot(s)",
			ErrInsufficientStock, itemDescription, remaining, len(candidates))
	}

	for _, step := range plan {
		inv.byID[step.LotID].QtyRemaining -= step.QtyTaken
	}
	return plan, nil
}
