package harmonize

import (
	"math"

	"github.com/grailbio/bioalign/seed"
)

// ransacFit is the outcome of Stage B (spec §4.5 Stage B): the best-fit
// line's angle theta and reference-intercept at qStart=0.
type ransacFit struct {
	theta    float64
	rStart0  float64
	inliers  int
}

// point is a seed reduced to its midpoint, the way Stage B treats surviving
// seeds as points (qStart+length/2, rStart+length/2) (spec §4.5 Stage B).
type point struct {
	q, r float64
}

func midpoint(s seed.Seed) point {
	half := float64(s.Length) / 2
	return point{q: float64(s.QStart) + half, r: float64(s.RBegin()) + half}
}

// pairIndex deterministically enumerates (i,j) candidate pairs by index
// hashing, per spec §9's Open Question resolution: "choose a deterministic
// bounded count... deterministic pair enumeration by index hashing".
func pairIndex(iter, n int) (int, int) {
	if n < 2 {
		return 0, 0
	}
	h := uint64(iter)*2654435761 + 1
	i := int(h % uint64(n))
	h = h*2654435761 + 1
	j := int(h % uint64(n))
	if i == j {
		j = (j + 1) % n
	}
	return i, j
}

// fitRANSAC runs a fixed, deterministic number of RANSAC iterations over
// pts, each time fitting a line through a deterministically chosen pair and
// counting inliers whose perpendicular deviation (per the delta formula
// below) is <= maxDeltaDist. It returns the best fit found, or ok=false if
// fewer than two points are available (spec §4.9: "RANSAC degenerate (fewer
// than two seeds): skipped, no filtering applied").
func fitRANSAC(pts []point, iterations int, maxDeltaDist float64) (fit ransacFit, ok bool) {
	if len(pts) < 2 {
		return ransacFit{}, false
	}
	best := ransacFit{inliers: -1}
	for iter := 0; iter < iterations; iter++ {
		i, j := pairIndex(iter, len(pts))
		p1, p2 := pts[i], pts[j]
		if p1.q == p2.q {
			continue // vertical line; degenerate for this q/r parameterization
		}
		slope := (p2.r - p1.r) / (p2.q - p1.q)
		theta := math.Atan(slope)
		rStart0 := p1.r - slope*p1.q

		count := 0
		for _, p := range pts {
			if perpendicularDelta(p, theta, rStart0) <= maxDeltaDist {
				count++
			}
		}
		if count > best.inliers {
			best = ransacFit{theta: theta, rStart0: rStart0, inliers: count}
		}
	}
	if best.inliers < 0 {
		return ransacFit{}, false
	}
	return best, true
}

// perpendicularDelta computes the deviation δ of point p from the fitted
// line, following spec §4.5 Stage B's formula literally:
//
//	δ = |x1 − x|, x1 = qStart / sin(π/2−θ), x = ((rStart + qStart·cot(π/2−θ)) − rStart0)·sin(θ)
//
// Since cot(π/2−θ) = tan(θ) and sin(π/2−θ) = cos(θ), this reduces to
// x1 = q/cos(θ), x = (r + q·tan(θ) − rStart0)·sin(θ).
func perpendicularDelta(p point, theta, rStart0 float64) float64 {
	x1 := p.q / math.Cos(theta)
	x := (p.r + p.q*math.Tan(theta) - rStart0) * math.Sin(theta)
	return math.Abs(x1 - x)
}

// stageB runs Stage B: fit a line via RANSAC, then keep only seeds whose
// deviation from it is within max(minDeltaDist, maxDeltaDist*queryLen).
func stageB(seeds seed.Set, iterations int, maxDeltaDist, minDeltaDist float64, queryLen int64) seed.Set {
	pts := make([]point, len(seeds))
	for i, s := range seeds {
		pts[i] = midpoint(s)
	}
	fit, ok := fitRANSAC(pts, iterations, maxDeltaDist)
	if !ok {
		return seeds
	}
	threshold := minDeltaDist
	if rel := maxDeltaDist * float64(queryLen); rel > threshold {
		threshold = rel
	}
	out := make(seed.Set, 0, len(seeds))
	for i, s := range seeds {
		if perpendicularDelta(pts[i], fit.theta, fit.rStart0) <= threshold {
			out = append(out, s)
		}
	}
	return out
}
