package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sanadledger/ledger"
)

// validateResult mirrors the teacher's JSON result shape for its validate
// subcommand (cmd/einvoice/validate.go's Result), renamed to this domain.
type validateResult struct {
	InvoiceCount int      `json:"invoice_count"`
	Valid        bool     `json:"valid"`
	Violations   []string `json:"violations,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var invoicesPath, linesPath, holidaysPath, format string
	fs.StringVar(&invoicesPath, "invoices", "", "invoice header CSV file")
	fs.StringVar(&linesPath, "lines", "", "invoice-lines CSV file")
	fs.StringVar(&holidaysPath, "holidays", "", "optional holiday calendar JSON file, adds holiday dates to the calendar check")
	fs.StringVar(&format, "format", "text", "output format: text, json")
	fs.Usage = validateUsage
	_ = fs.Parse(args)

	if invoicesPath == "" || linesPath == "" {
		validateUsage()
		return exitError
	}

	result := validateLedger(invoicesPath, linesPath, holidaysPath)

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	default:
		outputValidateText(result)
	}

	if result.Error != "" {
		return exitError
	}
	if !result.Valid {
		return exitViolations
	}
	return exitOK
}

func validateLedger(invoicesPath, linesPath, holidaysPath string) validateResult {
	var result validateResult

	headerFile, err := os.Open(invoicesPath)
	if err != nil {
		result.Error = fmt.Sprintf("open invoices: %v", err)
		return result
	}
	defer headerFile.Close()

	linesFile, err := os.Open(linesPath)
	if err != nil {
		result.Error = fmt.Sprintf("open lines: %v", err)
		return result
	}
	defer linesFile.Close()

	invoices, err := ledger.LoadGeneratedLedger(headerFile, linesFile)
	if err != nil {
		result.Error = fmt.Sprintf("load ledger: %v", err)
		return result
	}
	result.InvoiceCount = len(invoices)

	var holidays []ledger.Holiday
	if holidaysPath != "" {
		hf, err := os.Open(holidaysPath)
		if err != nil {
			result.Error = fmt.Sprintf("open holidays: %v", err)
			return result
		}
		defer hf.Close()
		holidays, err = ledger.LoadHolidays(hf)
		if err != nil {
			result.Error = fmt.Sprintf("load holidays: %v", err)
			return result
		}
	}

	cfg := ledger.DefaultConfig()
	violations := ledger.CheckLedger(invoices, cfg, holidays)
	result.Valid = len(violations) == 0
	for _, v := range violations {
		result.Violations = append(result.Violations, v.String())
	}
	return result
}

func outputValidateText(result validateResult) {
	if result.Error != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
		return
	}
	if result.Valid {
		fmt.Printf("valid: %d invoice(s), no violations\n", result.InvoiceCount)
		return
	}
	fmt.Printf("invalid: %d invoice(s), %d violation(s)\n", result.InvoiceCount, len(result.Violations))
	for _, v := range result.Violations {
		fmt.Printf("  - %s\n", v)
	}
}

func validateUsage() {
	fmt.Fprintf(os.Stderr, `Usage: ledgergen validate [options]

Re-runs the arithmetic, classification, calendar, and numbering validators
over an already-generated ledger (profitability and price-fidelity checks
need the original catalog and are not re-checkable from these files alone).

Options:
  --invoices FILE   invoice header CSV file (required)
  --lines FILE      invoice-lines CSV file (required)
  --holidays FILE   holiday calendar JSON file (adds holiday dates to the calendar check)
  --format string   output format: text, json (default "text")

Exit codes:
  0  no violations found
  1  violations found
  2  an error occurred reading the input files
`)
}
