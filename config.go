package ledger

import "github.com/shopspring/decimal"

// IntRange is an inclusive [Min, Max] bound used by several Config fields.
type IntRange struct {
	Min int
	Max int
}

// PricingPolicy selects how a line's unit price is derived from its lot.
type PricingPolicy int

const (
	// PricingLotPrice bills at the lot's own frozen price; the only
	// policy this module implements (spec.md §9, SPEC_FULL.md §9).
	PricingLotPrice PricingPolicy = iota
	// PricingWeightedAverage is named by the runtime configuration table
	// (§6) but disallowed unless explicitly requested, and unimplemented:
	// requesting it returns ErrUnsupportedPricingPolicy.
	PricingWeightedAverage
)

// Config holds every runtime option enumerated in spec.md §6, built as a
// plain struct and defaulted by DefaultConfig — the teacher builds its
// Invoice the same way, via direct struct literal rather than a builder.
type Config struct {
	VATRate     decimal.Decimal
	RandomSeed  int64
	InvoicePrefix string

	LotActivationDays IntRange // days added to import_date to form stock_date
	LineItemsPerInvoice IntRange
	QuantityPerLine     IntRange

	PricingPolicy PricingPolicy

	QuarterCapsTargetRatio  decimal.Decimal
	ExciseExclusiveRatio    decimal.Decimal
	AlignmentStrictTolerance decimal.Decimal
	AlignmentLooseToleranceLow  decimal.Decimal // 0.80 by default
	AlignmentLooseToleranceHigh decimal.Decimal // 1.20 by default

	// RefinementCoarseTolerance/FineTolerance implement the two-tier
	// policy spec.md §9 resolves the Open Question to (5.00 -> 0.10).
	RefinementCoarseTolerance decimal.Decimal
	RefinementFineTolerance   decimal.Decimal
	RefinementIterationCap    int

	ComposerRetryCap int
	AlignmentOuterLoopCap int

	OvershootGuardRatio decimal.Decimal // 0.95 of sales_ex_vat, spec.md §4.5

	SellerName          string
	SellerVATNumber     string
}

// DefaultConfig returns the configuration spec.md §6 names as the default
// for every option.
func DefaultConfig() Config {
	return Config{
		VATRate:       decimal.NewFromFloat(0.15),
		RandomSeed:    1,
		InvoicePrefix: "INV",

		LotActivationDays:   IntRange{Min: 0, Max: 12},
		LineItemsPerInvoice: IntRange{Min: 2, Max: 10},
		QuantityPerLine:     IntRange{Min: 3, Max: 40},

		PricingPolicy: PricingLotPrice,

		QuarterCapsTargetRatio:   decimal.NewFromFloat(1.00),
		ExciseExclusiveRatio:     decimal.NewFromFloat(0.20),
		AlignmentStrictTolerance: decimal.NewFromFloat(0.10),
		AlignmentLooseToleranceLow:  decimal.NewFromFloat(0.80),
		AlignmentLooseToleranceHigh: decimal.NewFromFloat(1.20),

		RefinementCoarseTolerance: decimal.NewFromFloat(5.00),
		RefinementFineTolerance:   decimal.NewFromFloat(0.10),
		RefinementIterationCap:    50,

		ComposerRetryCap:      50,
		AlignmentOuterLoopCap: 1000,

		OvershootGuardRatio: decimal.NewFromFloat(0.95),

		SellerName:      "Sanad Retail Trading Co.",
		SellerVATNumber: "300000000000003",
	}
}
