package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sanadledger/ledger/internal/exportxml"
	"github.com/shopspring/decimal"
)

// WriteInvoiceHeaders writes the invoice header file named in spec.md §6:
// one row per invoice with number, datetime, type, client identity, the
// three totals, the QR payload (SIMPLIFIED only), and an excise flag.
// Grounded on the pack's encoding/csv writer idiom (ibkractivitycsv.go).
func WriteInvoiceHeaders(w io.Writer, invoices []*Invoice) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"number", "datetime", "type", "client_name", "client_vat",
		"total_ex_vat", "vat_amount", "total_inc_vat", "qr_payload", "excise_flag"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("ledger: write invoice header row: %w", err)
	}

	for _, inv := range invoices {
		clientName, clientVAT := "", ""
		if inv.Customer != nil {
			clientName, clientVAT = inv.Customer.Name, inv.Customer.TaxRegistrationNo
		}
		row := []string{
			inv.Number,
			inv.Timestamp.Format("2006-01-02T15:04:05"),
			inv.Type.String(),
			clientName,
			clientVAT,
			inv.Subtotal.StringFixed(2),
			inv.VATAmount.StringFixed(2),
			inv.Total.StringFixed(2),
			inv.QRPayload,
			fmt.Sprintf("%t", inv.hasExciseLine()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ledger: write invoice row %s: %w", inv.Number, err)
		}
	}
	return cw.Error()
}

// WriteInvoiceLines writes the invoice-lines file named in spec.md §6: one
// row per line, referencing its invoice number, lot id, classification,
// quantity, and price.
func WriteInvoiceLines(w io.Writer, invoices []*Invoice) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"invoice_number", "line_number", "lot_id", "item_description",
		"classification", "qty", "unit_price_ex_vat", "line_subtotal"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("ledger: write invoice-lines header row: %w", err)
	}

	for _, inv := range invoices {
		for i, l := range inv.Lines {
			row := []string{
				inv.Number,
				fmt.Sprintf("%d", i+1),
				l.LotID,
				l.ItemDescription,
				l.Classification.String(),
				fmt.Sprintf("%d", l.Qty),
				l.UnitPriceExVAT.StringFixed(2),
				l.LineSubtotal.StringFixed(2),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("ledger: write invoice-line row %s/%d: %w", inv.Number, i+1, err)
			}
		}
	}
	return cw.Error()
}

// LoadGeneratedLedger reconstructs invoices from a previously written
// invoice-header file and invoice-lines file (the pair WriteInvoiceHeaders
// and WriteInvoiceLines produce), for the validate subcommand's re-check
// pass. Lot cost is not recoverable from these files, so profitability
// re-checks are the caller's responsibility against the original catalog;
// this loader only rebuilds what's needed for arithmetic, classification,
// calendar, and numbering checks.
func LoadGeneratedLedger(headers, lines io.Reader) ([]*Invoice, error) {
	byNumber, err := loadHeaderRows(headers)
	if err != nil {
		return nil, err
	}
	if err := loadLineRows(lines, byNumber); err != nil {
		return nil, err
	}

	out := make([]*Invoice, 0, len(byNumber))
	for _, inv := range byNumber {
		out = append(out, inv)
	}
	return out, nil
}

func loadHeaderRows(r io.Reader) (map[string]*Invoice, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ledger: read invoice headers: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("ledger: invoice header file is empty")
	}

	out := make(map[string]*Invoice, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 10 {
			return nil, fmt.Errorf("ledger: malformed invoice header row %v", row)
		}
		ts, err := time.Parse("2006-01-02T15:04:05", row[1])
		if err != nil {
			return nil, fmt.Errorf("ledger: invoice %s: %w", row[0], err)
		}
		invType := Simplified
		if row[2] == "TAX" {
			invType = Tax
		}
		subtotal, _ := decimal.NewFromString(row[5])
		vat, _ := decimal.NewFromString(row[6])
		total, _ := decimal.NewFromString(row[7])

		inv := &Invoice{Number: row[0], Type: invType, Timestamp: ts, Subtotal: subtotal, VATAmount: vat, Total: total, QRPayload: row[8]}
		if row[3] != "" {
			inv.Customer = &Customer{Name: row[3], TaxRegistrationNo: row[4]}
		}
		out[row[0]] = inv
	}
	return out, nil
}

func loadLineRows(r io.Reader, byNumber map[string]*Invoice) error {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("ledger: read invoice lines: %w", err)
	}
	if len(rows) < 1 {
		return fmt.Errorf("ledger: invoice-lines file is empty")
	}

	for _, row := range rows[1:] {
		if len(row) < 8 {
			return fmt.Errorf("ledger: malformed invoice-line row %v", row)
		}
		inv, ok := byNumber[row[0]]
		if !ok {
			return fmt.Errorf("ledger: line references unknown invoice %q", row[0])
		}
		qty, err := strconv.Atoi(row[5])
		if err != nil {
			return fmt.Errorf("ledger: invoice %s: %w", row[0], err)
		}
		price, _ := decimal.NewFromString(row[6])
		subtotal, _ := decimal.NewFromString(row[7])
		inv.Lines = append(inv.Lines, InvoiceLine{
			LotID:           row[2],
			ItemDescription: row[3],
			Classification:  classificationFromString(row[4]),
			Qty:             qty,
			UnitPriceExVAT:  price,
			UnitCostExVAT:   price, // not recoverable from the CSV round-trip; see doc comment
			LineSubtotal:    subtotal,
		})
	}
	return nil
}

func classificationFromString(s string) Classification {
	switch s {
	case "EXC_INSPECTION":
		return ClassExciseInspection
	case "NONEXC_INSPECTION":
		return ClassNonExciseInspection
	case "NONEXC_OUTSIDE":
		return ClassNonExciseOutside
	default:
		return ClassUnknown
	}
}

// WriteQuarterlySummaryXML renders the run's quarterly summary as
// structured XML via internal/exportxml (spec.md §6, SPEC_FULL.md §4.9).
func WriteQuarterlySummaryXML(w io.Writer, run RunReport) error {
	summaries := make([]exportxml.QuarterSummary, 0, len(run.Quarters))
	for _, q := range run.Quarters {
		summaries = append(summaries, exportxml.QuarterSummary{
			Label:         q.Label,
			TargetIncVAT:  q.TargetIncVAT,
			ActualIncVAT:  q.ActualIncVAT,
			Variance:      q.Variance,
			Strict:        q.Strict,
			CoverageRatio: q.CoverageRatio,
		})
	}
	return exportxml.WriteQuarterlySummary(w, summaries)
}

// WriteExciseInvoicesXML renders the excise-invoices listing (every
// invoice carrying an EXC_INSPECTION line) as structured XML.
func WriteExciseInvoicesXML(w io.Writer, invoices []*Invoice) error {
	rows := make([]exportxml.ExciseInvoice, 0)
	for _, inv := range invoices {
		if !inv.hasExciseLine() {
			continue
		}
		l := inv.Lines[0]
		rows = append(rows, exportxml.ExciseInvoice{
			Number:    inv.Number,
			Timestamp: inv.Timestamp.Format("2006-01-02T15:04:05"),
			ItemDesc:  l.ItemDescription,
			Qty:       l.Qty,
			UnitPrice: l.UnitPriceExVAT,
			Total:     inv.Total,
		})
	}
	return exportxml.WriteExciseInvoices(w, rows)
}
