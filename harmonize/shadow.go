// Package harmonize implements Harmonization (C7, spec §4.5): a
// contradiction-removing dual line-sweep, optional RANSAC trend filter,
// gap-cost cutting, cluster splitting, and a minimum score floor that turn a
// contradictory per-strip seed set into a monotone, chainable one.
package harmonize

import (
	"sort"

	"github.com/grailbio/bioalign/seed"
)

// shadow is a ShadowInterval (spec §3): [Begin,End) on one rotated axis,
// back-pointing to its originating seed by index.
type shadow struct {
	Begin, End int64
	SeedIdx    int
}

// leftShadows computes the left-shadow of every seed (spec §3: "Left-shadow
// of seed s on query length Q is [qStart(s), rEnd(s) - qStart(s) + Q)").
func leftShadows(seeds seed.Set, axisLen int64) []shadow {
	out := make([]shadow, len(seeds))
	for i, s := range seeds {
		begin := int64(s.QStart)
		end := s.REnd() - int64(s.QStart) + axisLen
		out[i] = shadow{Begin: begin, End: end, SeedIdx: i}
	}
	return out
}

// rightShadows computes the right-shadow of every seed (spec §3:
// "Right-shadow of seed s on ... R is [rStart(s), qEnd(s) - rStart(s) + R)").
// R plays the same role as Q above (an axis-length constant shared by every
// seed) and is passed in as axisLen; stageA passes the reference length
// here and the query length to leftShadows. The constant only shifts every
// interval's end uniformly and therefore cannot change which intervals
// nest inside which others.
func rightShadows(seeds seed.Set, axisLen int64) []shadow {
	out := make([]shadow, len(seeds))
	for i, s := range seeds {
		begin := s.RBegin()
		end := int64(s.QEnd()) - s.RBegin() + axisLen
		out[i] = shadow{Begin: begin, End: end, SeedIdx: i}
	}
	return out
}

// openSet is the "balanced-tree-ordered-by-end of currently open intervals"
// of spec §4.5 Stage A, implemented as a slice kept sorted by End (Design
// Notes §9: "any balanced ordered structure suffices... a skip-list or
// augmented red-black tree both fit"; grounded on the teacher's own
// interval/endpoint_index.go, which solves the analogous sorted-position
// problem with sort.Search rather than a tree).
type openSet struct {
	items []shadow // sorted ascending by End
}

// evictExpired pops every interval whose End <= boundary (spec: "pop from
// the tree every interval whose end ≤ s.start").
func (o *openSet) evictExpired(boundary int64) {
	k := sort.Search(len(o.items), func(i int) bool { return o.items[i].End > boundary })
	o.items = o.items[k:]
}

// insert adds s to the set, keeping items sorted by End, and returns its
// insertion index (so the caller can inspect predecessor/successor).
func (o *openSet) insert(s shadow) int {
	pos := sort.Search(len(o.items), func(i int) bool { return o.items[i].End >= s.End })
	o.items = append(o.items, shadow{})
	copy(o.items[pos+1:], o.items[pos:])
	o.items[pos] = s
	return pos
}

// contains reports whether outer fully contains inner (spec §3: "nested
// (one contains the other)").
func contains(outer, inner shadow) bool {
	return outer.Begin <= inner.Begin && inner.End <= outer.End
}

// sweep runs one pass of Stage A over the given shadow intervals (already
// keyed to seed indices), returning the set of seed indices marked
// contradictory.
func sweep(shadows []shadow) map[int]bool {
	sorted := append([]shadow(nil), shadows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Begin != sorted[j].Begin {
			return sorted[i].Begin < sorted[j].Begin
		}
		// "on equal start, the longer interval first" (spec §4.5 Stage A).
		return (sorted[i].End - sorted[i].Begin) > (sorted[j].End - sorted[j].Begin)
	})

	contradictory := map[int]bool{}
	var open openSet
	for _, s := range sorted {
		open.evictExpired(s.Begin)
		pos := open.insert(s)
		if pos+1 < len(open.items) {
			successor := open.items[pos+1]
			if contains(successor, s) {
				contradictory[s.SeedIdx] = true
			}
		}
		if pos > 0 {
			predecessor := open.items[pos-1]
			if contains(s, predecessor) {
				contradictory[predecessor.SeedIdx] = true
			}
		}
	}
	return contradictory
}

// stageA runs the dual line-sweep of spec §4.5 Stage A and returns the
// surviving subset of seeds (those marked contradictory in neither pass).
func stageA(seeds seed.Set, queryLen, refLen int64) seed.Set {
	if len(seeds) == 0 {
		return seeds
	}
	leftBad := sweep(leftShadows(seeds, queryLen))
	rightBad := sweep(rightShadows(seeds, refLen))

	out := make(seed.Set, 0, len(seeds))
	for i, s := range seeds {
		if leftBad[i] || rightBad[i] {
			continue
		}
		out = append(out, s)
	}
	return out
}
