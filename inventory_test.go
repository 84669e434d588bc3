package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mkLot(id, item string, classification Classification, stockDate time.Time, qty int, price, cost string) Lot {
	return Lot{
		ID:              id,
		ItemDescription: item,
		Classification:  classification,
		StockDate:       stockDate,
		ImportDate:      stockDate,
		QtyImported:     qty,
		UnitPriceExVAT:  decimal.RequireFromString(price),
		UnitCostExVAT:   decimal.RequireFromString(cost),
	}
}

func TestInventory_LotsForItem_FIFOOrderedByStockDate(t *testing.T) {
	inv := NewInventory()
	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)

	lotLate := mkLot("CD-2:widget", "widget", ClassNonExciseOutside, late, 10, "5.00", "2.00")
	lotEarly := mkLot("CD-1:widget", "widget", ClassNonExciseOutside, early, 10, "5.00", "2.00")
	inv.Load([]Lot{lotLate, lotEarly})

	got := inv.LotsForItem("widget")
	if len(got) != 2 {
		t.Fatalf("LotsForItem returned %d lots, want 2", len(got))
	}
	if got[0].ID != "CD-1:widget" {
		t.Errorf("first lot = %s, want the earlier stock_date lot CD-1:widget", got[0].ID)
	}
}

func TestInventory_AvailableLots_ExcludesFutureActivation(t *testing.T) {
	inv := NewInventory()
	asOf := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	notYetActive := mkLot("CD-1:widget", "widget", ClassNonExciseOutside,
		asOf.AddDate(0, 0, 5), 10, "5.00", "2.00")
	active := mkLot("CD-2:widget", "widget", ClassNonExciseOutside,
		asOf.AddDate(0, 0, -5), 10, "5.00", "2.00")
	inv.Load([]Lot{notYetActive, active})

	got := inv.AvailableLots(asOf, ClassUnknown)
	if len(got) != 1 || got[0].ID != "CD-2:widget" {
		t.Errorf("AvailableLots = %v, want only CD-2:widget", got)
	}
}

func TestInventory_AvailableLots_ExcludesUnprofitable(t *testing.T) {
	inv := NewInventory()
	asOf := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	lossMaking := mkLot("CD-1:widget", "widget", ClassNonExciseOutside, asOf, 10, "3.00", "5.00")
	inv.Load([]Lot{lossMaking})

	if got := inv.AvailableLots(asOf, ClassUnknown); len(got) != 0 {
		t.Errorf("AvailableLots returned an unprofitable lot: %v", got)
	}
}

func TestInventory_AvailableLots_FiltersByClassification(t *testing.T) {
	inv := NewInventory()
	asOf := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	excise := mkLot("CD-1:widget", "widget", ClassExciseInspection, asOf, 10, "5.00", "2.00")
	nonExcise := mkLot("CD-2:widget", "widget", ClassNonExciseOutside, asOf, 10, "5.00", "2.00")
	inv.Load([]Lot{excise, nonExcise})

	got := inv.AvailableLots(asOf, ClassExciseInspection)
	if len(got) != 1 || got[0].ID != "CD-1:widget" {
		t.Errorf("AvailableLots(ClassExciseInspection) = %v, want only CD-1:widget", got)
	}
}

func TestInventory_Deduct_InsufficientStock(t *testing.T) {
	inv := NewInventory()
	lot := mkLot("CD-1:widget", "widget", ClassNonExciseOutside, time.Now(), 5, "5.00", "2.00")
	inv.Load([]Lot{lot})

	if err := inv.Deduct("CD-1:widget", 6); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("Deduct over capacity: err = %v, want ErrInsufficientStock", err)
	}
	if err := inv.Deduct("CD-1:widget", 3); err != nil {
		t.Fatalf("Deduct within capacity failed: %v", err)
	}
	l, _ := inv.Lot("CD-1:widget")
	if l.QtyRemaining != 2 {
		t.Errorf("QtyRemaining after deduct = %d, want 2", l.QtyRemaining)
	}
}

func TestInventory_Deduct_UnknownLot(t *testing.T) {
	inv := NewInventory()
	if err := inv.Deduct("nope", 1); !errors.Is(err, ErrUnknownLot) {
		t.Errorf("Deduct(unknown) err = %v, want ErrUnknownLot", err)
	}
}

func TestInventory_DeductFIFO_SpansMultipleLotsInOrder(t *testing.T) {
	inv := NewInventory()
	asOf := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	first := mkLot("CD-1:widget", "widget", ClassNonExciseOutside, asOf.AddDate(0, 0, -10), 5, "5.00", "2.00")
	second := mkLot("CD-2:widget", "widget", ClassNonExciseOutside, asOf.AddDate(0, 0, -5), 20, "6.00", "2.00")
	inv.Load([]Lot{second, first})

	plan, err := inv.DeductFIFO("widget", 10, asOf)
	if err != nil {
		t.Fatalf("DeductFIFO failed: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("DeductFIFO plan has %d steps, want 2", len(plan))
	}
	if plan[0].LotID != "CD-1:widget" || plan[0].QtyTaken != 5 {
		t.Errorf("first step = %+v, want CD-1:widget taking 5 (exhausting the earlier lot first)", plan[0])
	}
	if plan[1].LotID != "CD-2:widget" || plan[1].QtyTaken != 5 {
		t.Errorf("second step = %+v, want CD-2:widget taking the remaining 5", plan[1])
	}

	l1, _ := inv.Lot("CD-1:widget")
	l2, _ := inv.Lot("CD-2:widget")
	if l1.QtyRemaining != 0 {
		t.Errorf("CD-1 QtyRemaining = %d, want 0", l1.QtyRemaining)
	}
	if l2.QtyRemaining != 15 {
		t.Errorf("CD-2 QtyRemaining = %d, want 15", l2.QtyRemaining)
	}
}

func TestInventory_DeductFIFO_InsufficientStockLeavesNoPartialEffect(t *testing.T) {
	inv := NewInventory()
	asOf := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	lot := mkLot("CD-1:widget", "widget", ClassNonExciseOutside, asOf.AddDate(0, 0, -1), 5, "5.00", "2.00")
	inv.Load([]Lot{lot})

	_, err := inv.DeductFIFO("widget", 100, asOf)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("DeductFIFO err = %v, want ErrInsufficientStock", err)
	}
	l, _ := inv.Lot("CD-1:widget")
	if l.QtyRemaining != 5 {
		t.Errorf("QtyRemaining after failed DeductFIFO = %d, want unchanged 5", l.QtyRemaining)
	}
}
