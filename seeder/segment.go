// Package seeder implements the Binary Seeder (C4, spec §4.3): it produces
// SMEM-like Segments from a query using the FM-index contract (C3), then
// expands each Segment's SA interval into concrete Seeds for the
// Strip-of-Consideration builder (C5) to consume.
package seeder

import (
	"github.com/grailbio/bioalign/fmindex"
)

// Segment is a maximal query interval paired with the SA interval of its
// matching occurrences (spec §3: "query interval plus an SA-interval from
// the FM-index; carries a multiplicity").
type Segment struct {
	QStart, QEnd int32
	Interval     fmindex.Interval
}

// Len returns the query length spanned by the segment.
func (s Segment) Len() int32 { return s.QEnd - s.QStart }
