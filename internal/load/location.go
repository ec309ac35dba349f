package load

import (
	"fmt"

	"github.com/prometheusresearch/pbbt/internal/schema"
)

// Location is the position of a record in its source document.
// Locations are diagnostic only: they never participate in record
// equality, hashing or persistence.
type Location struct {
	File string
	Line int // 1-based
}

func (l Location) String() string {
	return fmt.Sprintf("%q, line %d", l.File, l.Line)
}

// Locations associates records with their source positions for the
// duration of a run. The association is identity-keyed and owned by
// whoever drives the loader; it is never stored on the record itself.
type Locations map[*schema.Record]Location

// Locate returns the source position of a record, if one was tracked.
func (ls Locations) Locate(r *schema.Record) (Location, bool) {
	loc, ok := ls[r]
	return loc, ok
}
