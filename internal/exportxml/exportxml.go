// Package exportxml renders the quarterly-summary and excise-invoice
// listing outputs (spec.md §6) as structured XML, built the same way the
// teacher's writer_cii.go/writer_ubl.go assemble an etree.Document before
// serializing, rather than hand-formatting tags with fmt.
package exportxml

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// QuarterSummary is the subset of a ledger.QuarterReport this package
// renders; kept decoupled from the ledger package so exportxml has no
// import-cycle dependency on the core.
type QuarterSummary struct {
	Label         string
	TargetIncVAT  decimal.Decimal
	ActualIncVAT  decimal.Decimal
	Variance      decimal.Decimal
	Strict        bool
	CoverageRatio decimal.Decimal
}

// ExciseInvoice is one row of the excise-invoices listing (spec.md §6).
type ExciseInvoice struct {
	Number    string
	Timestamp string
	ItemDesc  string
	Qty       int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// WriteQuarterlySummary renders one <quarterlySummary> document listing
// every quarter's target vs. actual, matching the teacher's
// CreateElement/SetText/Indent/WriteTo idiom.
func WriteQuarterlySummary(w io.Writer, quarters []QuarterSummary) error {
	doc := etree.NewDocument()
	root := doc.CreateElement("quarterlySummary")
	root.CreateAttr("xmlns", "urn:sanadledger:report:quarterly-summary:1")

	for _, q := range quarters {
		el := root.CreateElement("quarter")
		el.CreateAttr("label", q.Label)
		el.CreateAttr("strict", fmt.Sprintf("%t", q.Strict))
		el.CreateElement("targetIncVAT").SetText(q.TargetIncVAT.StringFixed(2))
		el.CreateElement("actualIncVAT").SetText(q.ActualIncVAT.StringFixed(2))
		el.CreateElement("variance").SetText(q.Variance.StringFixed(2))
		el.CreateElement("coverageRatio").SetText(q.CoverageRatio.StringFixed(4))
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("exportxml: write quarterly summary: %w", err)
	}
	return nil
}

// WriteExciseInvoices renders the <exciseInvoices> listing of every
// excise-exclusive invoice in the ledger (spec.md §6).
func WriteExciseInvoices(w io.Writer, rows []ExciseInvoice) error {
	doc := etree.NewDocument()
	root := doc.CreateElement("exciseInvoices")
	root.CreateAttr("xmlns", "urn:sanadledger:report:excise-invoices:1")

	for _, r := range rows {
		el := root.CreateElement("invoice")
		el.CreateAttr("number", r.Number)
		el.CreateElement("timestamp").SetText(r.Timestamp)
		el.CreateElement("itemDescription").SetText(r.ItemDesc)
		el.CreateElement("qty").SetText(fmt.Sprintf("%d", r.Qty))
		el.CreateElement("unitPriceExVAT").SetText(r.UnitPrice.StringFixed(2))
		el.CreateElement("total").SetText(r.Total.StringFixed(2))
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("exportxml: write excise invoices: %w", err)
	}
	return nil
}
