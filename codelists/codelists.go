// Package codelists holds the static reference tables a reconstructed
// ledger needs at its edges: ISO country/currency codes and the mapping
// from a catalog row's free-text shipment class to one of the three
// internal classifications. Mirrors how speedata/einvoice keeps its
// peppol/profile code lists as flat exported tables rather than parsing
// them at runtime.
package codelists

// ShipmentClass is the raw classification tag as it appears on an input
// catalog row, before being mapped to the ledger package's Classification.
type ShipmentClass string

const (
	ShipmentExciseInspection    ShipmentClass = "EXC_INSPECTION"
	ShipmentNonExciseInspection ShipmentClass = "NONEXC_INSPECTION"
	ShipmentNonExciseOutside    ShipmentClass = "NONEXC_OUTSIDE"
)

// Currency is an ISO 4217 alphabetic code. Only the one currency this
// reconstruction operates in is listed; the table exists so a future
// multi-currency catalog reader has somewhere to grow.
type Currency struct {
	Code     string
	Name     string
	Fraction int // minor-unit digits, e.g. 2 for fils/halalas-denominated currencies
}

var Currencies = map[string]Currency{
	"SAR": {Code: "SAR", Name: "Saudi Riyal", Fraction: 2},
}

// Country is an ISO 3166-1 alpha-2 entry. LoadCustomers does not consult
// this table when parsing a customer's address_line.
type Country struct {
	Code string
	Name string
}

var Countries = map[string]Country{
	"SA": {Code: "SA", Name: "Saudi Arabia"},
}

// NormalizeShipmentClass maps the input catalog's free-text shipment_class
// field to the canonical ShipmentClass, returning ok=false for anything
// unrecognized so the reader can surface an InputShapeError (spec.md §7).
func NormalizeShipmentClass(raw string) (ShipmentClass, bool) {
	switch ShipmentClass(raw) {
	case ShipmentExciseInspection, ShipmentNonExciseInspection, ShipmentNonExciseOutside:
		return ShipmentClass(raw), true
	default:
		return "", false
	}
}
