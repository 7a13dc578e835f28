package dp

import (
	"github.com/biogo/hts/sam"

	"github.com/grailbio/bioalign/align"
	"github.com/grailbio/bioalign/bioalignerr"
	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/pack"
	"github.com/grailbio/bioalign/seed"
	"github.com/grailbio/bioalign/seq"
)

// ExtendChain is the entry point of DPExtender (C8, spec §4.6): given one
// harmonized, monotone chain of seeds and the query it was seeded from, it
// fills the gaps between consecutive seeds with banded Needleman-Wunsch and
// extends off both ends of the chain with dual-extension DP, returning a
// single frozen Alignment.
//
// Reverse-strand chains are handled the way BWA's own packed-reference
// scheme does it: rather than special-casing reference extraction on the
// virtual reverse strand, the query is reverse-complemented once up front
// and the chain's query coordinates are remapped into that orientation, so
// every reference window below is a plain forward pack.Extract. This relies
// on seeder.makeSeed already having folded reverse-strand occurrences back
// onto ascending forward-strand RStart/RBegin/REnd (spec §3's mirror
// formula), which is what makes rc(query[QStart:QEnd]) == ref[RBegin:REnd)
// hold for a reverse-strand seed.
func ExtendChain(chain seed.Set, query []byte, refPack *pack.Pack, refID int, cfg config.Options) (*align.Alignment, error) {
	if len(chain) == 0 {
		return nil, bioalignerr.New(bioalignerr.InvalidInput, "dp: ExtendChain requires a non-empty chain")
	}

	onForward := chain[0].OnForwardStrand
	effQuery := query
	work := chain
	if !onForward {
		effQuery = seq.ReverseComplement(query)
		work = remapReverseChain(chain, int32(len(query)))
	}

	a := align.New(refID, 0, 0, onForward)

	leftRefConsumed, leftQueryConsumed, leftOps, err := extendLeft(work[0], effQuery, refPack, cfg)
	if err != nil {
		return nil, err
	}
	a.RefStart = work[0].RBegin() - int64(leftRefConsumed)

	leadingClip := int(work[0].QStart) - leftQueryConsumed
	a.Append(sam.CigarSoftClipped, leadingClip)
	for _, op := range leftOps {
		a.Append(op.Type, op.Len)
	}
	a.Append(sam.CigarEqual, int(work[0].Length))

	for i := 1; i < len(work); i++ {
		gapOps, err := fillGap(work[i-1], work[i], effQuery, refPack, cfg)
		if err != nil {
			return nil, err
		}
		for _, op := range gapOps {
			a.Append(op.Type, op.Len)
		}
		a.Append(sam.CigarEqual, int(work[i].Length))
	}

	last := work[len(work)-1]
	_, rightQueryConsumed, rightOps, err := extendRight(last, effQuery, refPack, cfg)
	if err != nil {
		return nil, err
	}
	for _, op := range rightOps {
		a.Append(op.Type, op.Len)
	}
	trailingClip := len(effQuery) - int(last.QEnd()) - rightQueryConsumed
	a.Append(sam.CigarSoftClipped, trailingClip)

	if err := a.Freeze(cfg.MatchScore, cfg.MismatchPenalty, cfg.GapOpen, cfg.GapExtend); err != nil {
		return nil, err
	}
	return a, nil
}

// remapReverseChain flips a chain's query coordinates into the
// reverse-complemented query's coordinate space, reversing seed order to
// restore ascending QStart (spec §8's monotone-chain invariant, mirrored).
// RStart/OnForwardStrand are carried through unchanged: RBegin/REnd already
// compute the correct ascending forward interval regardless of strand.
func remapReverseChain(chain seed.Set, queryLen int32) seed.Set {
	out := make(seed.Set, len(chain))
	for i, s := range chain {
		out[len(chain)-1-i] = seed.Seed{
			QStart:          queryLen - s.QEnd(),
			Length:          s.Length,
			RStart:          s.RStart,
			OnForwardStrand: s.OnForwardStrand,
			Ambiguity:       s.Ambiguity,
		}
	}
	return out
}

// refWindow extracts a forward-strand reference window, clamped to
// [0,FwdSize) and to the single contig containing the window's anchor so
// gap-filling and extension windows never attempt a bridging extraction
// (spec §3: "extraction across bridges is forbidden").
func refWindow(p *pack.Pack, lo, hi int64) ([]byte, error) {
	if lo < 0 {
		lo = 0
	}
	if hi > p.FwdSize() {
		hi = p.FwdSize()
	}
	if lo >= hi {
		return nil, nil
	}
	anchor := hi - 1
	ci, err := p.ContigOf(anchor)
	if err != nil {
		return nil, err
	}
	c := p.Contigs()[ci]
	if lo < c.Start {
		lo = c.Start
	}
	if hi > c.Start+c.Length {
		hi = c.Start + c.Length
	}
	if lo >= hi {
		return nil, nil
	}
	ns, err := p.Extract(lo, hi)
	if err != nil {
		return nil, err
	}
	return ns.Bases, nil
}

// extendLeft runs dual-extension DP off the start of the chain (spec §4.6:
// "before the first... run a dual-extension"), by reversing both the
// available query prefix and a matching reference window and running the
// same semi-global extension used for the right side.
func extendLeft(first seed.Seed, query []byte, p *pack.Pack, cfg config.Options) (refConsumed, queryConsumed int, ops []cellOp, err error) {
	qLen := int(first.QStart)
	if qLen == 0 {
		return 0, 0, nil, nil
	}
	qWin := query[:qLen]
	windowLen := int64(qLen) + int64(cfg.Padding)
	refLo := first.RBegin() - windowLen
	refBytes, err := refWindow(p, refLo, first.RBegin())
	if err != nil {
		return 0, 0, nil, err
	}
	band := int64(cfg.BandwidthDPExtension)
	res := extendOneSide(reverseBytes(refBytes), reverseBytes(qWin), cfg, band, cfg.ZDrop)
	return res.refConsumed, res.queryConsumed, reverseCellOps(res.ops), nil
}

// extendRight runs dual-extension DP off the end of the chain (spec §4.6:
// "after the last, run a dual-extension").
func extendRight(last seed.Seed, query []byte, p *pack.Pack, cfg config.Options) (refConsumed, queryConsumed int, ops []cellOp, err error) {
	qStart := int(last.QEnd())
	qWin := query[qStart:]
	if len(qWin) == 0 {
		return 0, 0, nil, nil
	}
	windowLen := int64(len(qWin)) + int64(cfg.Padding)
	refBytes, err := refWindow(p, last.REnd(), last.REnd()+windowLen)
	if err != nil {
		return 0, 0, nil, err
	}
	band := int64(cfg.BandwidthDPExtension)
	res := extendOneSide(refBytes, qWin, cfg, band, cfg.ZDrop)
	return res.refConsumed, res.queryConsumed, res.ops, nil
}

// fillGap runs banded global Needleman-Wunsch between two consecutive
// chained seeds (spec §4.6: "between consecutive seeds a,b... bandwidth =
// max(iMinBandwidthGapFilling, |diagShift|+slack)"). Overlapping seeds
// (a negative query or reference gap) need no interstitial DP; the overlap
// is simply absorbed by the seed runs on either side.
func fillGap(prev, curr seed.Seed, query []byte, p *pack.Pack, cfg config.Options) ([]cellOp, error) {
	qLo, qHi := int64(prev.QEnd()), int64(curr.QStart)
	rLo, rHi := prev.REnd(), curr.RBegin()
	if qHi <= qLo && rHi <= rLo {
		return nil, nil
	}
	if qHi < qLo {
		qHi = qLo
	}
	if rHi < rLo {
		rHi = rLo
	}
	qBytes := query[qLo:qHi]
	rBytes, err := refWindow(p, rLo, rHi)
	if err != nil {
		return nil, err
	}
	diagShift := (rHi - rLo) - (qHi - qLo)
	if diagShift < 0 {
		diagShift = -diagShift
	}
	band := int64(cfg.MinBandwidthGapFilling)
	if slack := diagShift + 1; slack > band {
		band = slack
	}
	ops, _ := globalTraceback(rBytes, qBytes, cfg, band)
	return ops, nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func reverseCellOps(ops []cellOp) []cellOp {
	out := make([]cellOp, len(ops))
	for i, op := range ops {
		out[len(ops)-1-i] = op
	}
	return out
}
