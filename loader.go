package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sanadledger/ledger/codelists"
	"github.com/shopspring/decimal"
)

// These JSON record shapes are the "pre-parsed record" ingestion contract
// spec.md §6 names at the input boundary — not the out-of-scope Excel/
// tabular reader itself, just the minimal decode step cmd/ledgergen needs
// to hand the core plain Go structs.

// catalogRow is one product-catalog input record (spec.md §6). Money
// fields decode straight into decimal.Decimal (it implements
// json.Unmarshaler) so no value on the money path ever passes through
// float64 (spec.md §9).
type catalogRow struct {
	CustomsDeclarationNo string          `json:"customs_declaration_no"`
	ItemDescription      string          `json:"item_description"`
	ShipmentClass        string          `json:"shipment_class"`
	ImportDate           string          `json:"import_date"`
	QtyImported          int             `json:"qty_imported"`
	UnitCostExVAT        decimal.Decimal `json:"unit_cost_ex_vat"`
	UnitPriceExVAT       decimal.Decimal `json:"unit_price_ex_vat"`
}

// customerRow is one B2B customer input record (spec.md §6).
type customerRow struct {
	ClientName   string          `json:"client_name"`
	VATNumber    string          `json:"vat_number"`
	AddressLine  string          `json:"address_line"`
	AmountIncVAT decimal.Decimal `json:"amount_inc_vat"`
	PurchaseDate string          `json:"purchase_date"`
}

// holidayRow is one holiday-calendar input record (spec.md §6).
type holidayRow struct {
	HolidayDate string `json:"holiday_date"`
	Name        string `json:"name"`
}

// targetRow is one quarter-target input record (spec.md §6).
type targetRow struct {
	Label       string          `json:"label"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	SalesExVAT  decimal.Decimal `json:"sales_ex_vat"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	SalesIncVAT decimal.Decimal `json:"sales_inc_vat"`
	Strict      bool            `json:"strict"`
}

const isoDate = "2006-01-02"

// parseISODate parses an ISO calendar date at UTC midnight.
func parseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(isoDate, s, time.UTC)
}

// classificationOf maps a codelists.ShipmentClass to the ledger package's
// internal Classification enum.
func classificationOf(sc codelists.ShipmentClass) Classification {
	switch sc {
	case codelists.ShipmentExciseInspection:
		return ClassExciseInspection
	case codelists.ShipmentNonExciseInspection:
		return ClassNonExciseInspection
	case codelists.ShipmentNonExciseOutside:
		return ClassNonExciseOutside
	default:
		return ClassUnknown
	}
}

// LoadCatalog decodes a JSON array of catalog rows into Lots. StockDate is
// left unset: activation delay is drawn later, by the Aligner's single
// seeded generator, so every stochastic draw in a run — including this one
// — stays reproducible through one generator instance (spec.md §9).
// ErrInputShape-equivalent failures surface as a plain error, fatal before
// any generation begins (spec.md §7).
func LoadCatalog(r io.Reader) ([]Lot, error) {
	var rows []catalogRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("ledger: decode catalog: %w", err)
	}

	lots := make([]Lot, 0, len(rows))
	for _, row := range rows {
		sc, ok := codelists.NormalizeShipmentClass(row.ShipmentClass)
		if !ok {
			return nil, fmt.Errorf("ledger: catalog row %s:%s: unrecognized shipment_class %q",
				row.CustomsDeclarationNo, row.ItemDescription, row.ShipmentClass)
		}
		importDate, err := parseISODate(row.ImportDate)
		if err != nil {
			return nil, fmt.Errorf("ledger: catalog row %s:%s: %w", row.CustomsDeclarationNo, row.ItemDescription, err)
		}
		lots = append(lots, Lot{
			ID:                   lotID(row.CustomsDeclarationNo, row.ItemDescription),
			ItemDescription:      row.ItemDescription,
			CustomsDeclarationNo: row.CustomsDeclarationNo,
			Classification:       classificationOf(sc),
			ImportDate:           importDate,
			QtyImported:          row.QtyImported,
			UnitCostExVAT:        row.UnitCostExVAT,
			UnitPriceExVAT:       row.UnitPriceExVAT,
		})
	}
	return lots, nil
}

// LoadCustomers decodes a JSON array of B2B customer rows.
func LoadCustomers(r io.Reader) ([]Customer, error) {
	var rows []customerRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("ledger: decode customers: %w", err)
	}
	out := make([]Customer, 0, len(rows))
	for _, row := range rows {
		d, err := parseISODate(row.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("ledger: customer %s: %w", row.ClientName, err)
		}
		out = append(out, Customer{
			Name:                 row.ClientName,
			TaxRegistrationNo:    row.VATNumber,
			Address:              row.AddressLine,
			PurchaseAmountIncVAT: row.AmountIncVAT,
			PurchaseDate:         d,
		})
	}
	return out, nil
}

// LoadHolidays decodes a JSON array of holiday rows.
func LoadHolidays(r io.Reader) ([]Holiday, error) {
	var rows []holidayRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("ledger: decode holidays: %w", err)
	}
	out := make([]Holiday, 0, len(rows))
	for _, row := range rows {
		d, err := parseISODate(row.HolidayDate)
		if err != nil {
			return nil, fmt.Errorf("ledger: holiday %s: %w", row.Name, err)
		}
		out = append(out, Holiday{Date: d, Name: row.Name})
	}
	return out, nil
}

// LoadTargets decodes a JSON array of quarter-target rows.
func LoadTargets(r io.Reader) ([]QuarterTarget, error) {
	var rows []targetRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("ledger: decode targets: %w", err)
	}
	out := make([]QuarterTarget, 0, len(rows))
	for _, row := range rows {
		start, err := parseISODate(row.PeriodStart)
		if err != nil {
			return nil, fmt.Errorf("ledger: target %s: %w", row.Label, err)
		}
		end, err := parseISODate(row.PeriodEnd)
		if err != nil {
			return nil, fmt.Errorf("ledger: target %s: %w", row.Label, err)
		}
		out = append(out, QuarterTarget{
			Label:       row.Label,
			PeriodStart: start,
			PeriodEnd:   end,
			SalesExVAT:  row.SalesExVAT,
			VATAmount:   row.VATAmount,
			SalesIncVAT: row.SalesIncVAT,
			Strict:      row.Strict,
		})
	}
	return out, nil
}
