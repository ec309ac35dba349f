package ui

// Quiet wraps a report and passes through warnings, errors and
// interactive choices only. Progress chrome (parts, sections, headers,
// notices, literal blocks) is dropped.
type Quiet struct {
	Inner Report
}

// NewQuiet wraps a report for quiet operation.
func NewQuiet(inner Report) *Quiet { return &Quiet{Inner: inner} }

func (q *Quiet) Part()               {}
func (q *Quiet) Section()            {}
func (q *Quiet) Header(text string)  {}
func (q *Quiet) Notice(text string)  {}
func (q *Quiet) Literal(text string) {}

func (q *Quiet) Warning(text string) { q.Inner.Warning(text) }
func (q *Quiet) Error(text string)   { q.Inner.Error(text) }

func (q *Quiet) Pick(text string, choices ...Choice) string {
	return q.Inner.Pick(text, choices...)
}
