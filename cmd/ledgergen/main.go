// Command ledgergen reconstructs a retrospective sales ledger from an
// import catalog, a B2B customer roster, a holiday calendar, and quarterly
// VAT-return targets.
package main

import (
	"fmt"
	"os"
)

const (
	exitOK         = 0
	exitViolations = 1
	exitError      = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return exitError
	}

	subcommand := os.Args[1]

	switch subcommand {
	case "reconcile":
		return runReconcile(os.Args[2:])
	case "validate":
		return runValidate(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", subcommand)
		usage()
		return exitError
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ledgergen <command> [options]

Commands:
  reconcile   Generate a full invoice ledger from input records
  validate    Re-run validators over an already-generated ledger

Use "ledgergen <command> --help" for more information about a command.
`)
}
