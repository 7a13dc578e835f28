// Package seed implements the Seed value type and SeedSet container of
// spec §3/§4.2 (C2): a (query-pos, ref-pos, length, strand) triple with a
// total ordering, plus the set-level score operation used throughout
// strip-of-consideration construction and harmonization.
package seed

import "sort"

// Seed is a single maximally-exact-match hit: query interval [QStart,QEnd)
// paired with a reference interval of the same length, on one strand.
type Seed struct {
	QStart          int32
	Length          int32
	RStart          int64
	OnForwardStrand bool
	Ambiguity       int32 // SA-interval size this seed was drawn from
}

// QEnd returns the end of the seed's query interval.
func (s Seed) QEnd() int32 { return s.QStart + s.Length }

// REndForward returns the end of the seed's reference interval, interpreted
// on the forward-oriented coordinate (spec §3: rStart, rEnd = rStart+length).
func (s Seed) REndForward() int64 { return s.RStart + int64(s.Length) }

// RBegin returns the ascending-order start of the seed's reference interval.
// On the reverse strand RStart is the interval's last base (spec §3:
// "rStart-length+1 ... rStart"); RBegin/REnd normalize both orientations to
// an ascending interval.
func (s Seed) RBegin() int64 {
	if s.OnForwardStrand {
		return s.RStart
	}
	return s.RStart - int64(s.Length) + 1
}

// REnd returns the ascending-order end of the seed's reference interval,
// regardless of strand.
func (s Seed) REnd() int64 {
	if s.OnForwardStrand {
		return s.RStart + int64(s.Length)
	}
	return s.RStart + 1
}

// Value is the seed's contribution to a set's score: its length (spec §3).
func (s Seed) Value() int64 { return int64(s.Length) }

// Diagonal returns the diagonal coordinate d = rStart - qStart used to sort
// seeds for strip-of-consideration construction (spec §4.4, GLOSSARY).
func (s Seed) Diagonal() int64 { return s.RBegin() - int64(s.QStart) }

// Less implements the lexicographic ordering of spec §3:
// (qStart, rStart, length, strand, ambiguity).
func Less(a, b Seed) bool {
	if a.QStart != b.QStart {
		return a.QStart < b.QStart
	}
	if a.RStart != b.RStart {
		return a.RStart < b.RStart
	}
	if a.Length != b.Length {
		return a.Length < b.Length
	}
	if a.OnForwardStrand != b.OnForwardStrand {
		return !a.OnForwardStrand && b.OnForwardStrand
	}
	return a.Ambiguity < b.Ambiguity
}

// Set is a contiguous, index-addressed container of seeds (Design Notes §9:
// prefer a vector over a linked list; no iterator invalidation hazards).
type Set []Seed

// Score is the sum of the values (lengths) of every seed in the set
// (spec §3).
func (s Set) Score() int64 {
	var total int64
	for _, seed := range s {
		total += seed.Value()
	}
	return total
}

// SortByQuery sorts the set ascending by query start position, the order
// Harmonization Stage C walks in.
func (s Set) SortByQuery() {
	sort.Slice(s, func(i, j int) bool { return s[i].QStart < s[j].QStart })
}

// SortByDiagonal sorts the set ascending by diagonal coordinate, the order
// the Strip-of-Consideration sliding window walks in.
func (s Set) SortByDiagonal() {
	sort.Slice(s, func(i, j int) bool { return s[i].Diagonal() < s[j].Diagonal() })
}

// Split partitions the set at index i into two sets sharing no backing
// array mutation hazards (a fresh copy on each side), matching Design
// Notes §9's preference for explicit, ownership-transferring operations
// over shared mutable state.
func (s Set) Split(i int) (left, right Set) {
	left = append(Set(nil), s[:i]...)
	right = append(Set(nil), s[i:]...)
	return left, right
}

// Merge concatenates two sets into a new one, preserving neither's
// original backing array.
func Merge(a, b Set) Set {
	out := make(Set, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
