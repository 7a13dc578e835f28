// Package soc implements the Strip-of-Consideration builder (C5) and
// priority queue (C6) of spec §4.4: a sliding window over seeds sorted by
// diagonal coordinate that emits non-overlapping strips into a max-heap
// ordered by accumulated seed length, ambiguity as tiebreaker.
package soc

import "github.com/grailbio/bioalign/seed"

// Order is the SoCOrder triple of spec §3: (accumulativeLength,
// seedAmbiguity, seedCount), compared so that greater accumulativeLength
// wins, and on ties, lower ambiguity wins (spec §4.4: "ambiguity enters the
// order inverted compared to length").
type Order struct {
	AccumLength int64
	Ambiguity   int64
	Count       int
}

// Add incorporates a seed entering the sliding window (spec §4.4 step 2:
// "maintaining SoCOrder incrementally via +=").
func (o Order) Add(s seed.Seed) Order {
	o.AccumLength += s.Value()
	o.Ambiguity += int64(s.Ambiguity)
	o.Count++
	return o
}

// Sub removes a seed leaving the sliding window.
func (o Order) Sub(s seed.Seed) Order {
	o.AccumLength -= s.Value()
	o.Ambiguity -= int64(s.Ambiguity)
	o.Count--
	return o
}

// Greater reports whether o strictly outranks other: greater AccumLength
// wins; on ties, lower Ambiguity wins (spec §4.4).
func (o Order) Greater(other Order) bool {
	if o.AccumLength != other.AccumLength {
		return o.AccumLength > other.AccumLength
	}
	return o.Ambiguity < other.Ambiguity
}
