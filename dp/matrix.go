// Package dp implements DPExtender (C8, spec §4.6): banded Needleman-Wunsch
// between consecutive seeds and dual-extension off the ends of a chain,
// with affine (optionally two-piece affine) gap scoring and Z-drop early
// termination, emitting CIGAR-like op runs via align.Alignment.
//
// Grounded on other_examples/andrew-torda-seq_compat/gotoh.go's Gotoh
// matrix shape (value matrices per state, here with a per-cell traceback
// state recorded during the fill) and biogo/hts's CigarOp run-length
// representation, reused directly via align.Alignment.Append.
package dp

import "github.com/grailbio/bioalign/config"

// negInf is a finite stand-in for -infinity, chosen small enough that
// adding any realistic penalty never overflows int32 but negative enough
// that it never wins a max() against a real score.
const negInf = int32(-1 << 28)

// matrices holds the Gotoh value matrices for a banded affine-gap DP: one
// match/mismatch matrix M, and one gap matrix per axis per affine piece
// (Ix = gap along the query/insertion, Iy = gap along the reference/
// deletion). Piece 2 is only used when cfg.GapOpen2 > 0 (spec §4.6:
// "optional second gap piece").
type matrices struct {
	rows, cols int // rows = len(ref)+1, cols = len(query)+1
	band       int64
	useP2      bool
	m          []int32
	ix1, iy1   []int32
	ix2, iy2   []int32

	// trace[X] records, per cell, which predecessor state produced that
	// cell's value, resolved during fill rather than recomputed during
	// traceback (avoids re-deriving ties from floating precision-free int32
	// arithmetic, but mainly keeps traceback a straight array read).
	// Values are the cellState constants defined in banded.go.
	mTrace, ix1Trace, iy1Trace, ix2Trace, iy2Trace []int8
}

func newMatrices(rows, cols int, band int64, useP2 bool) *matrices {
	n := rows * cols
	mx := &matrices{rows: rows, cols: cols, band: band, useP2: useP2}
	mx.m = fillSlice(n, negInf)
	mx.ix1 = fillSlice(n, negInf)
	mx.iy1 = fillSlice(n, negInf)
	mx.mTrace = make([]int8, n)
	mx.ix1Trace = make([]int8, n)
	mx.iy1Trace = make([]int8, n)
	if useP2 {
		mx.ix2 = fillSlice(n, negInf)
		mx.iy2 = fillSlice(n, negInf)
		mx.ix2Trace = make([]int8, n)
		mx.iy2Trace = make([]int8, n)
	}
	return mx
}

func fillSlice(n int, v int32) []int32 {
	s := make([]int32, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func (mx *matrices) at(i, j int) int { return i*mx.cols + j }

// inBand reports whether cell (i,j) lies within the configured band around
// the main diagonal. Bandwidth is always sized (by the caller) to be at
// least the length difference between ref and query, so the band never
// excludes either matrix corner.
func (mx *matrices) inBand(i, j int) bool {
	d := int64(i - j)
	if d < 0 {
		d = -d
	}
	return d <= mx.band
}

func max2(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func max3(a, b, c int32) int32 { return max2(a, max2(b, c)) }

func max5(a, b, c, d, e int32) int32 { return max2(max3(a, b, c), max2(d, e)) }

// gapOpenCost returns the cost of opening and extending a new single-base
// gap, the cheaper of the one or two configured affine pieces.
func gapOpenCost(cfg config.Options) int32 {
	c := cfg.GapOpen + cfg.GapExtend
	if cfg.GapOpen2 > 0 {
		c2 := cfg.GapOpen2 + cfg.GapExtend2
		if c2 < c {
			c = c2
		}
	}
	return c
}
