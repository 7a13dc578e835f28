// Package mapq implements MappingQuality (C9, spec §4.7): given the
// top-scoring alignments of a query, assign a confidence to the primary
// from the score gap to the runner-up, and mark supplementary alignments.
//
// Grounded on pileup/snp/qual.go's score-gap-to-probability shape (an error
// probability derived from a score difference, then converted to a Phred-
// like confidence), adapted here from base-quality scoring to alignment
// mapping quality.
package mapq

import (
	"math"
	"sort"

	"github.com/grailbio/bioalign/align"
	"github.com/grailbio/bioalign/config"
)

// Assign scores and marks alignments in place (spec §4.7): the highest-
// scoring alignment among the top ReportNBest becomes primary with a mapQ
// derived from the score gap to the second-best; every other alignment
// whose query interval overlaps the primary by at most
// dMaxOverlapSupplementary and ranks among the top MaxSupplementaryPerPrim
// is kept as a supplementary with mapQ forced to zero. Alignments beyond
// ReportNBest / MaxSupplementaryPerPrim are dropped from the returned
// slice entirely.
func Assign(alignments []*align.Alignment, cfg config.Options) []*align.Alignment {
	if len(alignments) == 0 {
		return alignments
	}
	sort.SliceStable(alignments, func(i, j int) bool {
		a, b := alignments[i], alignments[j]
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		// Ties broken by ascending reference position (spec §8 scenario 4:
		// "primary chosen deterministically by reference position"), not by
		// whatever order the caller happened to list them in.
		if a.RefID != b.RefID {
			return a.RefID < b.RefID
		}
		return a.RefStart < b.RefStart
	})
	n := len(alignments)
	if cfg.ReportNBest > 0 && n > cfg.ReportNBest {
		n = cfg.ReportNBest
	}
	best := alignments[0]

	var secondScore int32
	haveSecond := false
	for _, a := range alignments[1:n] {
		if !haveSecond || a.Score() > secondScore {
			secondScore = a.Score()
			haveSecond = true
		}
	}
	if !haveSecond {
		secondScore = 0
	}
	best.SetMapQ(confidence(best.Score(), secondScore))

	out := make([]*align.Alignment, 0, n)
	out = append(out, best)
	supp := 0
	for _, a := range alignments[1:n] {
		if supp >= cfg.MaxSupplementaryPerPrim {
			break
		}
		if overlapFraction(best, a) > cfg.MaxOverlapSupplementary {
			continue
		}
		a.SetMapQ(0)
		a.SetSupplementary(true)
		out = append(out, a)
		supp++
	}
	return out
}

// confidence maps a (bestScore, secondScore) gap to a mapping-quality value
// in [0,1] (spec §4.7: "mapQ = f(score0-score1, score0) clamped to
// [0,1]"). The gap is treated as log-odds evidence in favor of the primary,
// following the same score-difference-to-probability shape as
// pileup/snp/qual.go's Phred-domain qualSumTable, generalized from a table
// lookup (bounded, discrete Phred range) to a closed-form logistic curve
// (unbounded, continuous alignment scores).
func confidence(bestScore, secondScore int32) float64 {
	if bestScore <= 0 {
		return 0
	}
	gap := float64(bestScore - secondScore)
	if gap < 0 {
		gap = 0
	}
	// A gap of zero (a tie) means no evidence favoring the primary: 0.
	// The curve saturates toward 1 as the gap grows relative to bestScore,
	// scaled so that a gap equal to bestScore itself (secondScore <= 0)
	// already sits close to the top of the range.
	x := gap / float64(bestScore)
	q := 1 - math.Exp(-2*x)
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}
	return q
}

// overlapFraction returns the fraction of b's query interval that overlaps
// a's query interval, relative to b's own length (spec §4.7: "overlaps the
// primary by fraction <= dMaxOverlapSupplementary").
func overlapFraction(a, b *align.Alignment) float64 {
	aLo, aHi := a.QueryStart, a.QueryStart+a.QuerySpan()
	bLo, bHi := b.QueryStart, b.QueryStart+b.QuerySpan()
	lo := aLo
	if bLo > lo {
		lo = bLo
	}
	hi := aHi
	if bHi < hi {
		hi = bHi
	}
	if hi <= lo {
		return 0
	}
	bLen := bHi - bLo
	if bLen <= 0 {
		return 0
	}
	return float64(hi-lo) / float64(bLen)
}
