package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable kinds of spec.md §7. Composer and
// simulator recover from these locally; they only escalate past the
// Aligner boundary when an entire day's or basket's attempts are exhausted.
var (
	// ErrInsufficientStock is returned when a lot (or the aggregate of
	// available lots) cannot satisfy a requested quantity.
	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	// ErrProfitabilityViolation is returned when a candidate line would
	// sell below the lot's cost.
	ErrProfitabilityViolation = errors.New("ledger: sale below cost")
	// ErrUnsupportedPricingPolicy is returned when a Config requests a
	// pricing policy other than per-lot pricing; see SPEC_FULL.md §9.
	ErrUnsupportedPricingPolicy = errors.New("ledger: unsupported pricing policy")
	// ErrUnknownLot is returned by inventory lookups for an unrecognized lot id.
	ErrUnknownLot = errors.New("ledger: unknown lot")
)

// AlignmentKind distinguishes the fatal error kinds of spec.md §7: the two
// the Aligner is allowed to escalate past a single quarter, plus malformed
// input.
type AlignmentKind int

const (
	// KindUnreachable: a strict quarter could not be closed within
	// tolerance after convergence, refinement, and the balancing fallback.
	KindUnreachable AlignmentKind = iota
	// KindInvariantViolation: post-run validators found a critical defect.
	KindInvariantViolation
	// KindInputShape: upstream records were malformed before generation began.
	KindInputShape
)

func (k AlignmentKind) String() string {
	switch k {
	case KindUnreachable:
		return "alignment unreachable"
	case KindInvariantViolation:
		return "invariant violation"
	case KindInputShape:
		return "input shape error"
	default:
		return "unknown"
	}
}

// AlignmentError is the one structured, fatal error type the core returns.
// It names the quarter and kind, and (for KindInvariantViolation) carries
// the validator violations that triggered it.
type AlignmentError struct {
	Quarter    string
	Kind       AlignmentKind
	Violations []Violation
	Detail     string
}

// Error implements the error interface.
func (e *AlignmentError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("quarter %s: %s: %s", e.Quarter, e.Kind, e.Detail)
	}
	if len(e.Violations) > 0 {
		return fmt.Sprintf("quarter %s: %s: %d violation(s), first: %s",
			e.Quarter, e.Kind, len(e.Violations), e.Violations[0].Text)
	}
	return fmt.Sprintf("quarter %s: %s", e.Quarter, e.Kind)
}
