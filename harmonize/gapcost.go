package harmonize

import (
	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/seed"
)

// gapPenalty computes the cost of chaining curr after prev, per spec §4.5
// Stage C. Both models charge for the indel length implied by the
// difference between the query gap and the reference gap; they differ in
// how conservatively they treat the shared portion of the gap.
func gapPenalty(prev, curr seed.Seed, model config.GapModel, mismatch, gapOpen, gapExtend int32) int64 {
	qGap := int64(curr.QStart) - int64(prev.QEnd())
	rGap := curr.RBegin() - prev.REnd()
	if qGap < 0 {
		qGap = 0
	}
	if rGap < 0 {
		rGap = 0
	}
	indel := qGap - rGap
	if indel < 0 {
		indel = -indel
	}
	switch model {
	case config.GapModelPessimistic:
		// Pessimistic: treat the longer of the two gaps as a run of
		// mismatches, a conservative (high) cost estimate.
		longer := qGap
		if rGap > longer {
			longer = rGap
		}
		return longer * int64(mismatch)
	default: // GapModelOptimistic
		// Optimistic: a tight lower bound -- only the length difference
		// needs an indel; the shared portion is free (could be all matches).
		if indel == 0 {
			return 0
		}
		return int64(gapOpen) + indel*int64(gapExtend)
	}
}

// stageC walks seeds (already sorted by query position) left to right,
// tracking the running chain score and truncating the tail once it falls
// more than fScoreTolerace * maxScore below its running maximum
// (spec §4.5 Stage C).
func stageC(seeds seed.Set, cfg config.Options) seed.Set {
	if len(seeds) == 0 {
		return seeds
	}
	var score, maxScore int64
	maxIdx := 0
	score = seeds[0].Value()
	maxScore = score
	for i := 1; i < len(seeds); i++ {
		gap := gapPenalty(seeds[i-1], seeds[i], cfg.GapModel, cfg.MismatchPenalty, cfg.GapOpen, cfg.GapExtend)
		score += seeds[i].Value() - gap
		if score > maxScore {
			maxScore = score
			maxIdx = i
		} else if float64(maxScore-score) > cfg.ScoreTolerance*float64(maxScore) && maxScore > 0 {
			return seeds[:maxIdx+1]
		}
	}
	return seeds[:maxIdx+1]
}

// stageD splits seeds (sorted by query position) into clusters wherever the
// delta-distance (the gap between consecutive seeds' diagonals) exceeds
// uiMaxDeltaDistanceInCLuster, then keeps only the top-scoring cluster
// unless the combined clusters cover more than fMinimalQueryCoverage of the
// query (spec §4.5 Stage D).
func stageD(seeds seed.Set, cfg config.Options, queryLen int64) seed.Set {
	if len(seeds) == 0 {
		return seeds
	}
	var clusters []seed.Set
	start := 0
	for i := 1; i < len(seeds); i++ {
		dd := seeds[i].Diagonal() - seeds[i-1].Diagonal()
		if dd < 0 {
			dd = -dd
		}
		if dd > cfg.MaxDeltaDistanceInCluster {
			clusters = append(clusters, seeds[start:i])
			start = i
		}
	}
	clusters = append(clusters, seeds[start:])
	if len(clusters) == 1 {
		return clusters[0]
	}

	var coveredQ int64
	for _, c := range clusters {
		coveredQ += int64(c[len(c)-1].QEnd() - c[0].QStart)
	}
	if queryLen > 0 && float64(coveredQ)/float64(queryLen) > cfg.MinimalQueryCoverage {
		return seed.Merge(seed.Set{}, seeds)
	}

	best := clusters[0]
	bestScore := best.Score()
	for _, c := range clusters[1:] {
		if s := c.Score(); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}
