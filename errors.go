package shareplan

import (
	"fmt"

	"github.com/etnz/shareplan/date"
)

// Error taxonomy. Structural problems (missing data, oversell) abort the
// computation that hit them and carry enough context for a user-facing
// message. Data-quality problems (classification gaps, missing FX) are
// recovered and recorded on a Diagnostics list instead.

// MissingDataError reports that a calculation was invoked without the data
// it needs: no reference points, or no usable current price.
type MissingDataError struct {
	What string // what is missing, e.g. "current price"
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing data: %s", e.What)
}

// OversellError reports a sale whose quantity exceeds the shares outstanding
// across all lots at its date. It signals a data-integrity problem in the
// upstream input; the builder rejects the whole build rather than produce
// negative outstanding quantities.
type OversellError struct {
	Date        date.Date
	Sold        Quantity // quantity the transaction tried to sell
	Outstanding Quantity // shares actually outstanding at that date
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("sale of %s shares on %s exceeds the %s shares outstanding",
		e.Sold, e.Date, e.Outstanding)
}

// DiagKind discriminates the non-fatal data-quality diagnostics.
type DiagKind int

const (
	// ClassificationGap marks an allocation that matched no known category.
	ClassificationGap DiagKind = iota
	// FxUnavailable marks a reference point with no price in a requested currency.
	FxUnavailable
)

func (k DiagKind) String() string {
	switch k {
	case ClassificationGap:
		return "classification gap"
	case FxUnavailable:
		return "fx unavailable"
	default:
		return "unknown"
	}
}

// Diagnostic is one recorded data-quality issue.
type Diagnostic struct {
	Kind    DiagKind
	Date    date.Date
	Subject string // the plan, contribution type, or currency concerned
	Detail  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s on %s (%s): %s", d.Kind, d.Date, d.Subject, d.Detail)
}

// Diagnostics collects non-fatal issues found while building or calculating.
// It is recovered silently by the engine but kept for audit.
type Diagnostics []Diagnostic

func (ds *Diagnostics) add(kind DiagKind, on date.Date, subject, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Kind:    kind,
		Date:    on,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	})
}
