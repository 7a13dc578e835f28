// Package fmindex specifies the FM-index query contract of spec §4.2 (C3).
// The real BWT/FM-index construction is explicitly out of scope (spec §1);
// this package only declares the interface C4 needs, plus an in-memory
// brute-force double (Naive) used by tests and small reference alignments.
package fmindex

import (
	"sort"

	"github.com/grailbio/bioalign/bioalignerr"
	"github.com/grailbio/bioalign/pack"
	"github.com/grailbio/bioalign/seq"
)

// Interval is a contiguous range in the suffix array of the reference
// (GLOSSARY: "SA interval"), together with the length of the suffix matched
// so far. Real FM-index implementations (e.g. BWA's bwtintv_t) carry this
// matched length alongside the SA range for exactly the same reason: the
// range alone can't distinguish "matched nothing yet" from "matched a
// shorter pattern that happens to collide with a longer one's rows".
type Interval struct {
	Lo, Hi int64 // half-open [Lo, Hi)
	Len    int32 // length of the suffix matched so far
}

// Size returns the number of suffixes covered by the interval.
func (iv Interval) Size() int64 { return iv.Hi - iv.Lo }

// Empty reports whether the interval covers no suffixes.
func (iv Interval) Empty() bool { return iv.Hi <= iv.Lo }

// Index is the C3 contract: backward-extend a query suffix to an SA
// interval, and enumerate occurrences up to a cap.
type Index interface {
	// Full returns the SA interval covering every suffix (the seed for
	// backward extension).
	Full() Interval
	// BackwardExtend prepends symbol to the matched suffix, narrowing
	// interval. Returns the narrowed interval; an empty result means no
	// occurrence of the extended pattern exists.
	BackwardExtend(interval Interval, symbol byte) Interval
	// Enumerate returns the reference start positions covered by interval.
	// If interval.Size() exceeds cap, it returns bioalignerr.AmbiguitySkipped
	// instead of enumerating (spec §4.2).
	Enumerate(interval Interval, cap int) ([]int64, error)
}

// Naive is an in-memory, brute-force double for Index: it holds the full
// symbol sequence plus a brute-force-sorted suffix array, and answers
// BackwardExtend/Enumerate by binary search over that array. It exists purely to exercise the C3
// contract end to end (spec §4.2 treats the FM-index as "contract only");
// production use would substitute a real BWT-backed implementation.
type Naive struct {
	text []byte // symbol codes, 0..4, implicitly terminated
	sa   []int32
}

// NewNaiveFromPack builds a Naive index over p's forward strand
// concatenated with its own reverse complement, the same
// forward+virtual-reverse-strand text spec §4.1 defines: an occurrence at
// position >= p.FwdSize() is a hit against the reverse complement of the
// forward strand, exactly as seeder.makeSeed's mirror-position folding
// expects.
func NewNaiveFromPack(p *pack.Pack) *Naive {
	fwd := p.ForwardBases()
	combined := make([]byte, 0, 2*len(fwd))
	combined = append(combined, fwd...)
	combined = append(combined, seq.ReverseComplement(fwd)...)
	return NewNaive(combined)
}

// NewNaive builds a Naive index over text by brute-force suffix sorting.
// Intended for small references only (tests, worked examples) — it is O(n^2
// log n) in the worst case, which a real FM-index avoids entirely.
func NewNaive(text []byte) *Naive {
	n := len(text)
	sa := make([]int32, n)
	for i := range sa {
		sa[i] = int32(i)
	}
	sort.Slice(sa, func(i, j int) bool {
		return lessSuffix(text, sa[i], sa[j])
	})
	return &Naive{text: append([]byte(nil), text...), sa: sa}
}

func lessSuffix(text []byte, i, j int32) bool {
	for int(i) < len(text) && int(j) < len(text) {
		if text[i] != text[j] {
			return text[i] < text[j]
		}
		i++
		j++
	}
	return len(text)-int(i) < len(text)-int(j)
}

// Full returns the interval spanning every suffix, matched length zero.
func (n *Naive) Full() Interval { return Interval{Lo: 0, Hi: int64(len(n.sa)), Len: 0} }

// BackwardExtend narrows interval to suffixes whose matched pattern is
// symbol prepended to whatever interval had already matched, via binary
// search over the suffix array.
func (n *Naive) BackwardExtend(interval Interval, symbol byte) Interval {
	if interval.Empty() {
		return Interval{Lo: interval.Hi, Hi: interval.Hi, Len: interval.Len + 1}
	}
	pattern := make([]byte, interval.Len+1)
	pattern[0] = symbol
	if interval.Len > 0 {
		copy(pattern[1:], n.text[n.sa[interval.Lo]:int(n.sa[interval.Lo])+int(interval.Len)])
	}
	next := n.searchPattern(pattern)
	next.Len = interval.Len + 1
	return next
}

func (n *Naive) searchPattern(pattern []byte) Interval {
	lo := sort.Search(len(n.sa), func(i int) bool {
		return comparePatternAtSuffix(n.text, n.sa[i], pattern) >= 0
	})
	hi := sort.Search(len(n.sa), func(i int) bool {
		return comparePatternAtSuffix(n.text, n.sa[i], pattern) > 0
	})
	return Interval{Lo: int64(lo), Hi: int64(hi)}
}

// comparePatternAtSuffix compares pattern against the suffix starting at
// sa[suffixStart], returning -1/0/1 the way bytes.Compare would on the
// shared prefix length.
func comparePatternAtSuffix(text []byte, suffixStart int32, pattern []byte) int {
	for i, p := range pattern {
		idx := int(suffixStart) + i
		if idx >= len(text) {
			return -1
		}
		if text[idx] != p {
			if text[idx] < p {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Enumerate returns every reference start position in interval, or
// AmbiguitySkipped if interval.Size() exceeds cap.
func (n *Naive) Enumerate(interval Interval, cap int) ([]int64, error) {
	if cap > 0 && interval.Size() > int64(cap) {
		return nil, bioalignerr.New(bioalignerr.AmbiguitySkipped, "fmindex: SA interval size %d exceeds cap %d", interval.Size(), cap)
	}
	out := make([]int64, 0, interval.Size())
	for i := interval.Lo; i < interval.Hi; i++ {
		out = append(out, int64(n.sa[i]))
	}
	return out, nil
}
