package run

import "github.com/prometheusresearch/pbbt/internal/schema"

// Case is one runnable unit of a test document: an input record, the
// prior output matched to it, and the behavior that checks or retrains
// the expectation.
//
// Check verifies observed output against the prior record and reports
// the result; Train produces the output record to reconcile into the
// output document, which may be the prior record (unchanged or kept),
// a new record, or nil when the case records no output.
type Case interface {
	Input() *schema.Record
	PriorOutput() *schema.Record
	Header()
	Check() *schema.Record
	Train() *schema.Record
}

// Scoped is implemented by composite cases that bind a selection
// segment and a state scope for their duration. Enter runs before the
// skip conditions are evaluated; when it returns false the case is
// skipped entirely and Leave is not called.
type Scoped interface {
	Enter() bool
	Leave()
}

// Base carries the common state of a case and implements the trivial
// parts of the Case interface.
type Base struct {
	Ctl *Control
	In  *schema.Record
	Out *schema.Record
}

// Input returns the case's input record.
func (b *Base) Input() *schema.Record { return b.In }

// PriorOutput returns the output record matched to the case, or nil.
func (b *Base) PriorOutput() *schema.Record { return b.Out }

// Header renders the default section header: the record's display
// line plus its source location when known.
func (b *Base) Header() {
	text := b.In.String()
	if loc, ok := b.Ctl.Locate(b.In); ok {
		text += "\n(" + loc.String() + ")"
	}
	b.Ctl.Report().Section()
	b.Ctl.Report().Header(text)
}
