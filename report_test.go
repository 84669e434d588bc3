package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleInvoiceForReport() *Invoice {
	price := decimal.RequireFromString("10.00")
	line := InvoiceLine{LotID: "CD-1:widget", ItemDescription: "widget", Classification: ClassNonExciseOutside,
		Qty: 5, UnitPriceExVAT: price, UnitCostExVAT: decimal.RequireFromString("5.00"), LineSubtotal: lineSubtotal(price, 5)}
	inv := &Invoice{Number: "INV-202306-000001", Type: Simplified,
		Timestamp: time.Date(2023, 6, 6, 10, 0, 0, 0, time.UTC), Lines: []InvoiceLine{line}}
	inv.recomputeTotals(decimal.RequireFromString("0.15"))
	inv.QRPayload = "deadbeef"
	return inv
}

func sampleTaxInvoiceForReport() *Invoice {
	price := decimal.RequireFromString("20.00")
	line := InvoiceLine{LotID: "CD-2:gizmo", ItemDescription: "gizmo", Classification: ClassNonExciseInspection,
		Qty: 3, UnitPriceExVAT: price, UnitCostExVAT: decimal.RequireFromString("15.00"), LineSubtotal: lineSubtotal(price, 3)}
	inv := &Invoice{Number: "INV-202306-000001", Type: Tax,
		Timestamp: time.Date(2023, 6, 7, 9, 0, 0, 0, time.UTC),
		Customer:  &Customer{Name: "Al Fahad Trading", TaxRegistrationNo: "300000000000001"},
		Lines:     []InvoiceLine{line}}
	inv.recomputeTotals(decimal.RequireFromString("0.15"))
	return inv
}

func TestWriteInvoiceHeaders_IncludesExciseFlagAndQR(t *testing.T) {
	var buf strings.Builder
	inv := sampleInvoiceForReport()
	if err := WriteInvoiceHeaders(&buf, []*Invoice{inv}); err != nil {
		t.Fatalf("WriteInvoiceHeaders failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "INV-202306-000001") {
		t.Errorf("output missing invoice number: %s", out)
	}
	if !strings.Contains(out, "deadbeef") {
		t.Errorf("output missing QR payload: %s", out)
	}
	if !strings.Contains(out, "false") {
		t.Errorf("output missing excise_flag=false for a non-excise invoice: %s", out)
	}
}

func TestInvoiceHeadersAndLines_RoundTripThroughLoadGeneratedLedger(t *testing.T) {
	invoices := []*Invoice{sampleInvoiceForReport(), sampleTaxInvoiceForReport()}

	var headers, lines strings.Builder
	if err := WriteInvoiceHeaders(&headers, invoices); err != nil {
		t.Fatalf("WriteInvoiceHeaders failed: %v", err)
	}
	if err := WriteInvoiceLines(&lines, invoices); err != nil {
		t.Fatalf("WriteInvoiceLines failed: %v", err)
	}

	got, err := LoadGeneratedLedger(strings.NewReader(headers.String()), strings.NewReader(lines.String()))
	if err != nil {
		t.Fatalf("LoadGeneratedLedger failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadGeneratedLedger returned %d invoices, want 2", len(got))
	}

	byNumber := map[string]*Invoice{}
	for _, inv := range got {
		// both fixtures reuse the number "INV-202306-000001" across the two
		// separate SIMPLIFIED/TAX sequence spaces, so key on type too.
		byNumber[inv.Number+"/"+inv.Type.String()] = inv
	}

	cash, ok := byNumber["INV-202306-000001/SIMPLIFIED"]
	if !ok {
		t.Fatalf("round-trip lost the SIMPLIFIED invoice")
	}
	if len(cash.Lines) != 1 || cash.Lines[0].LotID != "CD-1:widget" {
		t.Errorf("cash invoice lines = %+v, want one CD-1:widget line", cash.Lines)
	}
	if !cash.Total.Equal(decimal.RequireFromString("57.50")) {
		t.Errorf("cash invoice total = %s, want 57.50", cash.Total)
	}

	tax, ok := byNumber["INV-202306-000001/TAX"]
	if !ok {
		t.Fatalf("round-trip lost the TAX invoice")
	}
	if tax.Customer == nil || tax.Customer.TaxRegistrationNo != "300000000000001" {
		t.Errorf("tax invoice customer = %+v, want VAT number 300000000000001", tax.Customer)
	}
	if len(tax.Lines) != 1 || tax.Lines[0].Qty != 3 {
		t.Errorf("tax invoice lines = %+v, want one 3-qty line", tax.Lines)
	}
}

func TestWriteQuarterlySummaryXML_RendersEachQuarter(t *testing.T) {
	run := RunReport{Quarters: []QuarterReport{
		{Label: "2023-Q2", TargetIncVAT: decimal.RequireFromString("1000.00"),
			ActualIncVAT: decimal.RequireFromString("999.50"), Variance: decimal.RequireFromString("0.50"),
			Strict: true, CoverageRatio: decimal.RequireFromString("0.9995")},
	}}
	var buf strings.Builder
	if err := WriteQuarterlySummaryXML(&buf, run); err != nil {
		t.Fatalf("WriteQuarterlySummaryXML failed: %v", err)
	}
	if !strings.Contains(buf.String(), `label="2023-Q2"`) {
		t.Errorf("output missing quarter label: %s", buf.String())
	}
}

func TestWriteExciseInvoicesXML_OnlyIncludesExciseLines(t *testing.T) {
	exciseLine := InvoiceLine{LotID: "CD-3:tobacco", ItemDescription: "tobacco", Classification: ClassExciseInspection,
		Qty: 2, UnitPriceExVAT: decimal.RequireFromString("30.00"), UnitCostExVAT: decimal.RequireFromString("10.00"),
		LineSubtotal: lineSubtotal(decimal.RequireFromString("30.00"), 2)}
	excise := &Invoice{Number: "INV-202306-000009", Type: Simplified,
		Timestamp: time.Date(2023, 6, 8, 11, 0, 0, 0, time.UTC), Lines: []InvoiceLine{exciseLine}}
	excise.recomputeTotals(decimal.RequireFromString("0.15"))

	ordinary := sampleInvoiceForReport()

	var buf strings.Builder
	if err := WriteExciseInvoicesXML(&buf, []*Invoice{excise, ordinary}); err != nil {
		t.Fatalf("WriteExciseInvoicesXML failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "INV-202306-000009") {
		t.Errorf("output missing the excise invoice: %s", out)
	}
	if strings.Contains(out, "widget") {
		t.Errorf("output included a non-excise invoice's line: %s", out)
	}
}
