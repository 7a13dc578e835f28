package seeder

import (
	"github.com/grailbio/bioalign/fmindex"
	"github.com/grailbio/bioalign/pack"
	"github.com/grailbio/bioalign/seed"
)

// BinarySeeder produces Segments covering a query with SMEM-like semantics
// (spec §4.3), consuming only the C3 FM-index contract.
type BinarySeeder struct {
	Index fmindex.Index
}

// NewBinarySeeder wraps index for seeding.
func NewBinarySeeder(index fmindex.Index) *BinarySeeder {
	return &BinarySeeder{Index: index}
}

// Seed tiles query with maximal backward-extension matches, right to left,
// restarting each time an interval empties out, and returns the resulting
// Segments ordered by query start (spec §4.3: "Output is ordered by query
// start").
//
// This is a simplified, single-pass approximation of the classical two-pass
// BWA SMEM algorithm: within one anchor it greedily extends left until the
// SA interval empties, which makes every emitted Segment left-maximal at
// its own anchor and, for the first (rightmost) anchor, right-maximal too
// (it already starts from the query's last base). Later anchors are not
// re-verified for right-extension past their starting point; the full
// forward+backward sweep needed for true super-maximality is out of scope
// here (spec §4.2 treats the FM-index itself, and by extension full SMEM
// enumeration, as a contract, not a mandated algorithm).
func (s *BinarySeeder) Seed(query []byte) []Segment {
	n := int32(len(query))
	var segs []Segment
	qEnd := n
	for qEnd > 0 {
		interval := s.Index.Full()
		p := qEnd - 1
		for p >= 0 {
			next := s.Index.BackwardExtend(interval, query[p])
			if next.Empty() {
				break
			}
			interval = next
			p--
		}
		qStart := p + 1
		if qStart < qEnd {
			segs = append(segs, Segment{QStart: qStart, QEnd: qEnd, Interval: interval})
			qEnd = qStart
		} else {
			// query[qEnd-1] alone doesn't occur in the reference; skip it
			// and keep tiling from one base to the left.
			qEnd--
		}
	}
	reverseSegments(segs)
	return segs
}

func reverseSegments(segs []Segment) {
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
}

// ExpandSegments resolves each Segment's SA interval into concrete Seeds
// (spec §4.4: "seed list emplaced by resolving each Segment's SA interval up
// to an ambiguity cap, skipping bridging occurrences"). Occurrences beyond
// ambiguityCap report bioalignerr.AmbiguitySkipped for that segment alone;
// ExpandSegments records the segment's interval size as each resulting
// seed's Ambiguity and continues rather than failing the whole query,
// matching bioalignerr.AmbiguitySkipped's "locally recovered" classification
// (§7).
func ExpandSegments(segs []Segment, index fmindex.Index, p *pack.Pack, ambiguityCap int) seed.Set {
	var out seed.Set
	for _, seg := range segs {
		occurrences, err := index.Enumerate(seg.Interval, ambiguityCap)
		if err != nil {
			// Any Enumerate failure here is AmbiguitySkipped (spec §4.2); drop
			// this segment's occurrences and keep the rest of the query.
			continue
		}
		length := seg.Len()
		for _, occPos := range occurrences {
			if p.Bridging(occPos, int64(length)) {
				continue
			}
			out = append(out, makeSeed(seg, occPos, length, p.FwdSize()))
		}
	}
	return out
}

// makeSeed converts one FM-index occurrence into a Seed, folding a
// virtual-reverse-strand hit back onto the reverse-oriented Seed
// representation (spec §3: "rStart-length+1 ... rStart on reverse strand"),
// using the same pos -> 2*fwdSize-pos-1 mirror spec §3 defines for Pack.
func makeSeed(seg Segment, occPos int64, length int32, fwdSize int64) seed.Seed {
	if occPos < fwdSize {
		return seed.Seed{
			QStart:          seg.QStart,
			Length:          length,
			RStart:          occPos,
			OnForwardStrand: true,
			Ambiguity:       int32(seg.Interval.Size()),
		}
	}
	rStart := 2*fwdSize - occPos - 1
	return seed.Seed{
		QStart:          seg.QStart,
		Length:          length,
		RStart:          rStart,
		OnForwardStrand: false,
		Ambiguity:       int32(seg.Interval.Size()),
	}
}
