// Package align implements the Alignment value type of spec §3: a
// reference position, query position, an ordered run-length operation
// stream, an integer score, and a mapping-quality float. CIGAR operations
// reuse github.com/biogo/hts/sam's CigarOp/Cigar types, the way the teacher
// reaches for biogo/hts/sam rather than hand-rolling an operation enum.
package align

import (
	"github.com/biogo/hts/sam"

	"github.com/grailbio/bioalign/bioalignerr"
)

// Alignment is a single local alignment: a run-length operation stream
// between a query interval and a reference interval, plus score and
// mapping quality (spec §3).
type Alignment struct {
	RefID      int
	RefStart   int64
	QueryStart int64
	OnForward  bool
	ops        sam.Cigar
	score      int32
	mapQ       float64 // NaN until MappingQuality assigns it (spec §3)
	frozen     bool
	supplement bool
}

// New starts an empty, append-only Alignment (spec §4.8: "operations are
// append-only; a freeze call computes the score and locks the op stream").
func New(refID int, refStart, queryStart int64, onForward bool) *Alignment {
	return &Alignment{RefID: refID, RefStart: refStart, QueryStart: queryStart, OnForward: onForward, mapQ: nan()}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

// Append adds n consecutive operations of the given type to the op stream.
// Panics if the alignment is already frozen (spec §4.8's append-only
// invariant is a programming error to violate, matching the spec's
// "any other combination is a programming error" language for state
// machines).
func (a *Alignment) Append(op sam.CigarOpType, n int) {
	if a.frozen {
		panic("align: Append on a frozen Alignment")
	}
	if n <= 0 {
		return
	}
	if len(a.ops) > 0 && a.ops[len(a.ops)-1].Type() == op {
		last := a.ops[len(a.ops)-1]
		a.ops[len(a.ops)-1] = sam.NewCigarOp(op, last.Len()+n)
		return
	}
	a.ops = append(a.ops, sam.NewCigarOp(op, n))
}

// Ops returns the frozen op stream. Valid only after Freeze.
func (a *Alignment) Ops() sam.Cigar { return a.ops }

// QuerySpan returns the sum of op lengths that consume query bases
// (spec §3 invariant: op-sum on query equals qEnd-qStart).
func (a *Alignment) QuerySpan() int64 {
	var total int64
	for _, op := range a.ops {
		if consumesQuery(op.Type()) {
			total += int64(op.Len())
		}
	}
	return total
}

// RefSpan returns the sum of op lengths that consume reference bases
// (spec §3 invariant: op-sum on reference equals rEnd-rStart).
func (a *Alignment) RefSpan() int64 {
	var total int64
	for _, op := range a.ops {
		if consumesRef(op.Type()) {
			total += int64(op.Len())
		}
	}
	return total
}

func consumesQuery(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarInsertion, sam.CigarSoftClipped:
		return true
	default:
		return false
	}
}

func consumesRef(t sam.CigarOpType) bool {
	switch t {
	case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch, sam.CigarDeletion:
		return true
	default:
		return false
	}
}

// Freeze computes the alignment's score from its op stream and locks it
// against further Append calls (spec §4.8). matchScore/mismatchPenalty/
// gapOpen/gapExtend mirror the scoring parameters of spec §4.6.
func (a *Alignment) Freeze(matchScore, mismatchPenalty, gapOpen, gapExtend int32) error {
	if a.frozen {
		return nil
	}
	var score int64
	prevGap := false
	for _, op := range a.ops {
		switch op.Type() {
		case sam.CigarMatch, sam.CigarEqual:
			score += int64(matchScore) * int64(op.Len())
			prevGap = false
		case sam.CigarMismatch:
			score -= int64(mismatchPenalty) * int64(op.Len())
			prevGap = false
		case sam.CigarInsertion, sam.CigarDeletion:
			if !prevGap {
				score -= int64(gapOpen)
			}
			score -= int64(gapExtend) * int64(op.Len())
			prevGap = true
		default:
			prevGap = false
		}
	}
	if score > int64(int32(1)<<30) || score < -int64(int32(1)<<30) {
		return bioalignerr.New(bioalignerr.ResourceExhaustion, "align: score overflow: %d", score)
	}
	a.score = int32(score)
	a.frozen = true
	return nil
}

// Score returns the frozen score. Zero (and meaningless) before Freeze.
func (a *Alignment) Score() int32 { return a.score }

// SetMapQ assigns the mapping quality computed by package mapq.
func (a *Alignment) SetMapQ(q float64) { a.mapQ = q }

// MapQ returns the mapping quality, or NaN if unassigned (spec §3).
func (a *Alignment) MapQ() float64 { return a.mapQ }

// SetSupplementary marks this alignment as a supplementary record
// (spec §4.7).
func (a *Alignment) SetSupplementary(v bool) { a.supplement = v }

// Supplementary reports whether this alignment was marked supplementary.
func (a *Alignment) Supplementary() bool { return a.supplement }

// Concat appends b's operations after a's, in place, preserving the
// spec §3 invariant that concatenation sums per-axis op counts. Both
// alignments must be unfrozen.
func (a *Alignment) Concat(b *Alignment) error {
	if a.frozen || b.frozen {
		return bioalignerr.New(bioalignerr.InvalidInput, "align: Concat requires unfrozen alignments")
	}
	for _, op := range b.ops {
		a.Append(op.Type(), op.Len())
	}
	return nil
}
