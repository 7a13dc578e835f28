package dp

import (
	"github.com/biogo/hts/sam"

	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/seq"
)

// cellState identifies which of the five Gotoh matrices a traceback step is
// currently reading from.
type cellState int8

const (
	stateM cellState = iota
	stateIx1
	stateIy1
	stateIx2
	stateIy2
)

// cellOp is one run-length CIGAR-like operation produced by a traceback
// walk, in the same shape align.Alignment.Append consumes.
type cellOp struct {
	Type sam.CigarOpType
	Len  int
}

func baseScore(cfg config.Options, r, q byte) int32 {
	if r == q && r < seq.N {
		return cfg.MatchScore
	}
	return -cfg.MismatchPenalty
}

// fillGotoh runs the banded affine-gap (Gotoh) recurrence over ref x query,
// recording a traceback state alongside every cell's score (spec §4.6:
// "banded global/dual-extension DP... affine-gap, two-piece affine
// supported"). Cells outside the band are left at negInf and never read by
// a correctly-sized band (the caller is responsible for sizing band to
// cover every cell the traceback can reach).
func fillGotoh(ref, query []byte, cfg config.Options, band int64) *matrices {
	rows, cols := len(ref)+1, len(query)+1
	mx := newMatrices(rows, cols, band, cfg.GapOpen2 > 0)
	mx.m[mx.at(0, 0)] = 0

	go1, ge1 := cfg.GapOpen+cfg.GapExtend, cfg.GapExtend
	go2, ge2 := cfg.GapOpen2+cfg.GapExtend2, cfg.GapExtend2

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if i == 0 && j == 0 {
				continue
			}
			if !mx.inBand(i, j) {
				continue
			}
			idx := mx.at(i, j)

			// M: diagonal move, consumes one ref base and one query base.
			if i > 0 && j > 0 && mx.inBand(i-1, j-1) {
				pidx := mx.at(i-1, j-1)
				best, state := mx.m[pidx], stateM
				if mx.ix1[pidx] > best {
					best, state = mx.ix1[pidx], stateIx1
				}
				if mx.iy1[pidx] > best {
					best, state = mx.iy1[pidx], stateIy1
				}
				if mx.useP2 {
					if mx.ix2[pidx] > best {
						best, state = mx.ix2[pidx], stateIx2
					}
					if mx.iy2[pidx] > best {
						best, state = mx.iy2[pidx], stateIy2
					}
				}
				if best > negInf {
					mx.m[idx] = best + baseScore(cfg, ref[i-1], query[j-1])
					mx.mTrace[idx] = int8(state)
				}
			}

			// Ix: consumes one query base only (insertion relative to ref).
			if j > 0 && mx.inBand(i, j-1) {
				pidx := mx.at(i, j-1)
				open, ext := mx.m[pidx]-go1, mx.ix1[pidx]-ge1
				if open >= ext {
					mx.ix1[idx], mx.ix1Trace[idx] = open, int8(stateM)
				} else {
					mx.ix1[idx], mx.ix1Trace[idx] = ext, int8(stateIx1)
				}
				if mx.useP2 {
					open2, ext2 := mx.m[pidx]-go2, mx.ix2[pidx]-ge2
					if open2 >= ext2 {
						mx.ix2[idx], mx.ix2Trace[idx] = open2, int8(stateM)
					} else {
						mx.ix2[idx], mx.ix2Trace[idx] = ext2, int8(stateIx2)
					}
				}
			}

			// Iy: consumes one ref base only (deletion relative to query).
			if i > 0 && mx.inBand(i-1, j) {
				pidx := mx.at(i-1, j)
				open, ext := mx.m[pidx]-go1, mx.iy1[pidx]-ge1
				if open >= ext {
					mx.iy1[idx], mx.iy1Trace[idx] = open, int8(stateM)
				} else {
					mx.iy1[idx], mx.iy1Trace[idx] = ext, int8(stateIy1)
				}
				if mx.useP2 {
					open2, ext2 := mx.m[pidx]-go2, mx.iy2[pidx]-ge2
					if open2 >= ext2 {
						mx.iy2[idx], mx.iy2Trace[idx] = open2, int8(stateM)
					} else {
						mx.iy2[idx], mx.iy2Trace[idx] = ext2, int8(stateIy2)
					}
				}
			}
		}
	}
	return mx
}

// bestState returns the highest-scoring of the (up to five) matrices at
// (i,j), and which state it came from.
func (mx *matrices) bestState(i, j int) (int32, cellState) {
	idx := mx.at(i, j)
	best, state := mx.m[idx], stateM
	if mx.ix1[idx] > best {
		best, state = mx.ix1[idx], stateIx1
	}
	if mx.iy1[idx] > best {
		best, state = mx.iy1[idx], stateIy1
	}
	if mx.useP2 {
		if mx.ix2[idx] > best {
			best, state = mx.ix2[idx], stateIx2
		}
		if mx.iy2[idx] > best {
			best, state = mx.iy2[idx], stateIy2
		}
	}
	return best, state
}

// traceback walks a filled matrix backward from (i,j,state) to (0,0),
// emitting cellOps in reverse (closest-to-(i,j) first); the caller reverses
// the result to get left-to-right order.
func traceback(ref, query []byte, mx *matrices, i, j int, state cellState) []cellOp {
	var ops []cellOp
	for i > 0 || j > 0 {
		idx := mx.at(i, j)
		switch state {
		case stateM:
			if ref[i-1] == query[j-1] && ref[i-1] < seq.N {
				ops = appendOp(ops, sam.CigarEqual, 1)
			} else {
				ops = appendOp(ops, sam.CigarMismatch, 1)
			}
			state = cellState(mx.mTrace[idx])
			i--
			j--
		case stateIx1:
			ops = appendOp(ops, sam.CigarInsertion, 1)
			state = cellState(mx.ix1Trace[idx])
			j--
		case stateIy1:
			ops = appendOp(ops, sam.CigarDeletion, 1)
			state = cellState(mx.iy1Trace[idx])
			i--
		case stateIx2:
			ops = appendOp(ops, sam.CigarInsertion, 1)
			state = cellState(mx.ix2Trace[idx])
			j--
		case stateIy2:
			ops = appendOp(ops, sam.CigarDeletion, 1)
			state = cellState(mx.iy2Trace[idx])
			i--
		}
	}
	reverseOps(ops)
	return ops
}

// appendOp merges a unit-length op onto the tail run if the type matches,
// the way align.Alignment.Append does, keeping traceback output compact.
func appendOp(ops []cellOp, t sam.CigarOpType, n int) []cellOp {
	if len(ops) > 0 && ops[len(ops)-1].Type == t {
		ops[len(ops)-1].Len += n
		return ops
	}
	return append(ops, cellOp{Type: t, Len: n})
}

func reverseOps(ops []cellOp) {
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
}

// globalTraceback runs a full corner-to-corner banded Gotoh alignment of
// ref against query and returns its ops and score (spec §4.6: "banded
// global ... Needleman-Wunsch").
func globalTraceback(ref, query []byte, cfg config.Options, band int64) ([]cellOp, int32) {
	mx := fillGotoh(ref, query, cfg, band)
	rows, cols := len(ref)+1, len(query)+1
	best, state := mx.bestState(rows-1, cols-1)
	return traceback(ref, query, mx, rows-1, cols-1, state), best
}

// extendResult is the outcome of a one-sided dual-extension DP (spec §4.6):
// ops in forward (seed-adjacent-first) order, how much of ref/query was
// actually consumed before Z-drop or the window edge stopped the
// extension, and the extension's score.
type extendResult struct {
	ops          []cellOp
	refConsumed  int
	queryConsumed int
	score        int32
}

// extendOneSide runs the dual-extension DP of spec §4.6 ("ksw_extz2_sse
// equivalent"): a semi-global banded alignment anchored at (0,0) (the seed
// boundary) that is free to end anywhere in the window, tracking the
// best-scoring cell reached and applying a Z-drop early exit once the
// running best falls uiZDrop below the all-time best seen so far. Returns
// the alignment ops up to the best cell found; any unconsumed suffix of
// query is the caller's responsibility to mark as a soft clip.
func extendOneSide(ref, query []byte, cfg config.Options, band int64, zdrop int32) extendResult {
	rows, cols := len(ref)+1, len(query)+1
	mx := newMatrices(rows, cols, band, cfg.GapOpen2 > 0)
	mx.m[mx.at(0, 0)] = 0

	go1, ge1 := cfg.GapOpen+cfg.GapExtend, cfg.GapExtend
	go2, ge2 := cfg.GapOpen2+cfg.GapExtend2, cfg.GapExtend2

	bestScore := int32(0)
	bestI, bestJ := 0, 0
	globalBest := int32(0)

	for i := 0; i < rows; i++ {
		rowBest := negInf
		rowReached := false
		for j := 0; j < cols; j++ {
			if i == 0 && j == 0 {
				continue
			}
			if !mx.inBand(i, j) {
				continue
			}
			rowReached = true
			idx := mx.at(i, j)

			if i > 0 && j > 0 && mx.inBand(i-1, j-1) {
				pidx := mx.at(i-1, j-1)
				best, state := mx.m[pidx], stateM
				if mx.ix1[pidx] > best {
					best, state = mx.ix1[pidx], stateIx1
				}
				if mx.iy1[pidx] > best {
					best, state = mx.iy1[pidx], stateIy1
				}
				if mx.useP2 {
					if mx.ix2[pidx] > best {
						best, state = mx.ix2[pidx], stateIx2
					}
					if mx.iy2[pidx] > best {
						best, state = mx.iy2[pidx], stateIy2
					}
				}
				if best > negInf {
					mx.m[idx] = best + baseScore(cfg, ref[i-1], query[j-1])
					mx.mTrace[idx] = int8(state)
				}
			}
			if j > 0 && mx.inBand(i, j-1) {
				pidx := mx.at(i, j-1)
				open, ext := mx.m[pidx]-go1, mx.ix1[pidx]-ge1
				if open >= ext {
					mx.ix1[idx], mx.ix1Trace[idx] = open, int8(stateM)
				} else {
					mx.ix1[idx], mx.ix1Trace[idx] = ext, int8(stateIx1)
				}
				if mx.useP2 {
					open2, ext2 := mx.m[pidx]-go2, mx.ix2[pidx]-ge2
					if open2 >= ext2 {
						mx.ix2[idx], mx.ix2Trace[idx] = open2, int8(stateM)
					} else {
						mx.ix2[idx], mx.ix2Trace[idx] = ext2, int8(stateIx2)
					}
				}
			}
			if i > 0 && mx.inBand(i-1, j) {
				pidx := mx.at(i-1, j)
				open, ext := mx.m[pidx]-go1, mx.iy1[pidx]-ge1
				if open >= ext {
					mx.iy1[idx], mx.iy1Trace[idx] = open, int8(stateM)
				} else {
					mx.iy1[idx], mx.iy1Trace[idx] = ext, int8(stateIy1)
				}
				if mx.useP2 {
					open2, ext2 := mx.m[pidx]-go2, mx.iy2[pidx]-ge2
					if open2 >= ext2 {
						mx.iy2[idx], mx.iy2Trace[idx] = open2, int8(stateM)
					} else {
						mx.iy2[idx], mx.iy2Trace[idx] = ext2, int8(stateIy2)
					}
				}
			}

			if mx.m[idx] > rowBest {
				rowBest = mx.m[idx]
			}
			if mx.m[idx] > bestScore {
				bestScore = mx.m[idx]
				bestI, bestJ = i, j
			}
		}
		if rowBest > globalBest {
			globalBest = rowBest
		}
		// Z-drop (GLOSSARY): abort once the best score reachable in this
		// row has fallen zdrop below the best seen anywhere so far. Checked
		// per row rather than per true anti-diagonal, an approximation
		// that is conservative (it never extends past a real Z-drop point,
		// though it may stop one row later than an exact anti-diagonal
		// check would). rowReached gates this on rows the band actually
		// covers; a row entirely outside the band leaves rowBest at its
		// negInf initializer, which must not be compared against zdrop.
		if zdrop > 0 && i > 0 && rowReached && globalBest-rowBest > zdrop {
			break
		}
	}

	_, state := mx.bestState(bestI, bestJ)
	ops := traceback(ref, query, mx, bestI, bestJ, state)
	return extendResult{ops: ops, refConsumed: bestI, queryConsumed: bestJ, score: bestScore}
}
