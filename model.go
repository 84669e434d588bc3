package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification tags the excise/inspection status of a Lot and governs
// basket composition (§4.3).
type Classification int

const (
	// ClassUnknown is the zero value; lots carrying it are never selectable.
	ClassUnknown Classification = iota
	// ClassExciseInspection is excise-inspected stock, exclusive per invoice.
	ClassExciseInspection
	// ClassNonExciseInspection is non-excise inspected stock, the only
	// classification B2B (TAX) invoices may draw from.
	ClassNonExciseInspection
	// ClassNonExciseOutside is non-excise stock outside inspection.
	ClassNonExciseOutside
)

func (c Classification) String() string {
	switch c {
	case ClassExciseInspection:
		return "EXC_INSPECTION"
	case ClassNonExciseInspection:
		return "NONEXC_INSPECTION"
	case ClassNonExciseOutside:
		return "NONEXC_OUTSIDE"
	default:
		return "UNKNOWN"
	}
}

// InvoiceType distinguishes cash receipts from named B2B invoices.
type InvoiceType int

const (
	// Simplified is a cash-sale receipt with no named customer (§3).
	Simplified InvoiceType = iota
	// Tax is a B2B invoice naming the customer and their VAT number.
	Tax
)

func (t InvoiceType) String() string {
	if t == Tax {
		return "TAX"
	}
	return "SIMPLIFIED"
}

// Lot is the atomic inventory unit, identified by
// customs_declaration_no + ":" + item_description (§3).
type Lot struct {
	ID                   string // customs_declaration_no + ":" + item_description
	ItemDescription      string
	CustomsDeclarationNo string
	Classification       Classification
	ImportDate           time.Time
	StockDate            time.Time // import_date + activation delay (§3, §4.2)
	QtyImported          int
	QtyRemaining         int
	UnitCostExVAT        decimal.Decimal
	UnitPriceExVAT       decimal.Decimal // frozen at load, never recomputed (§3)
}

// lotID builds the composite identifier from its two parts.
func lotID(customsDeclarationNo, itemDescription string) string {
	return customsDeclarationNo + ":" + itemDescription
}

// profitable reports whether the lot's price never sells below its cost.
// Lots failing this are flagged and excluded from selection (§3).
func (l *Lot) profitable() bool {
	return l.UnitPriceExVAT.GreaterThanOrEqual(l.UnitCostExVAT)
}

// Customer is a B2B purchaser, used exactly once to produce one tax
// invoice (§3).
type Customer struct {
	Name               string
	TaxRegistrationNo  string // preserved as text to retain leading zeros
	Address            string
	PurchaseAmountIncVAT decimal.Decimal
	PurchaseDate       time.Time
}

// Holiday marks a date closed for business (§3).
type Holiday struct {
	Date time.Time
	Name string
}

// QuarterTarget fixes the aggregate sales and VAT a quarter must hit (§3).
type QuarterTarget struct {
	Label       string
	PeriodStart time.Time
	PeriodEnd   time.Time
	SalesExVAT  decimal.Decimal
	VATAmount   decimal.Decimal
	SalesIncVAT decimal.Decimal
	Strict      bool
}

// InvoiceLine references a specific lot (never just an item name), carrying
// a copy of its price/cost at the moment of sale (§3, §9 cyclic-ownership
// avoidance: invoices own lot-ids and price snapshots, never back-pointers).
type InvoiceLine struct {
	LotID           string
	ItemDescription string
	Classification  Classification
	Qty             int
	UnitPriceExVAT  decimal.Decimal
	UnitCostExVAT   decimal.Decimal
	LineSubtotal    decimal.Decimal // round2(unit_price * qty)
}

// Invoice is a synthesized ledger record (§3).
type Invoice struct {
	Number      string // {PREFIX}-{YYYYMM}-{SEQ}, separate SEQ spaces per Type
	Type        InvoiceType
	Timestamp   time.Time
	Customer    *Customer // nil for SIMPLIFIED (cash sentinel)
	Lines       []InvoiceLine
	Subtotal    decimal.Decimal
	VATAmount   decimal.Decimal
	Total       decimal.Decimal
	QRPayload   string // TLV/Base64, SIMPLIFIED only (§6)
}

// hasExciseLine reports whether any line on the invoice is excise-exclusive.
func (inv *Invoice) hasExciseLine() bool {
	for _, l := range inv.Lines {
		if l.Classification == ClassExciseInspection {
			return true
		}
	}
	return false
}

// recomputeTotals re-derives Subtotal/VATAmount/Total from Lines, the
// invariant spec.md §3 requires after any line-quantity mutation (refinement).
func (inv *Invoice) recomputeTotals(vatRate decimal.Decimal) {
	inv.Subtotal = sumSubtotals(inv.Lines)
	inv.VATAmount = vatFor(inv.Subtotal, vatRate)
	inv.Total = inv.Subtotal.Add(inv.VATAmount)
}

// DeferredPurchase records a B2B purchase that could not be fulfilled at
// its exact amount without violating stock or profitability (§4.5, §7).
type DeferredPurchase struct {
	Customer Customer
	Reason   string
}

// EventCounts tallies recoverable events for the run summary (§7).
type EventCounts struct {
	InsufficientStock      int
	ProfitabilityViolation int
}

// QuarterReport summarizes one quarter's reconciliation outcome.
type QuarterReport struct {
	Label              string
	TargetIncVAT       decimal.Decimal
	ActualIncVAT       decimal.Decimal
	Variance           decimal.Decimal
	Strict             bool
	CoverageRatio      decimal.Decimal // actual / target, surfaced per §9
	Deferred           []DeferredPurchase
	Events             EventCounts
	BalancingInvoiceUsed bool
	Violations         []Violation
}

// RunReport is the top-level summary returned by Reconcile.
type RunReport struct {
	Quarters []QuarterReport
}
