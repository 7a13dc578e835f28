package seeder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/fmindex"
	"github.com/grailbio/bioalign/pack"
	"github.com/grailbio/bioalign/seeder"
)

// codes encodes an ACGT string as symbol codes A=0,C=1,G=2,T=3.
func codes(s string) []byte {
	out := make([]byte, len(s))
	for i, c := range s {
		switch c {
		case 'A':
			out[i] = 0
		case 'C':
			out[i] = 1
		case 'G':
			out[i] = 2
		case 'T':
			out[i] = 3
		}
	}
	return out
}

func TestBinarySeederCoversWholeQuery(t *testing.T) {
	ref := codes("ACGTACGTTTTTGGGGCATCATCAT")
	idx := fmindex.NewNaive(ref)
	query := codes("CATCAT")

	segs := seeder.NewBinarySeeder(idx).Seed(query)
	require.NotEmpty(t, segs)

	// Segments must tile the query without gaps or overlaps and be ordered
	// by ascending query start (spec §4.3).
	assert.EqualValues(t, 0, segs[0].QStart)
	for i := 1; i < len(segs); i++ {
		assert.Equal(t, segs[i-1].QEnd, segs[i].QStart)
	}
	assert.EqualValues(t, len(query), segs[len(segs)-1].QEnd)
}

func TestBinarySeederSingleExactMatchIsOneSegment(t *testing.T) {
	ref := codes("ACGTACGTACGTACGT") // "ACGT" repeated four times
	idx := fmindex.NewNaive(ref)
	query := codes("ACGTACGT")

	segs := seeder.NewBinarySeeder(idx).Seed(query)
	require.Len(t, segs, 1)
	assert.EqualValues(t, 0, segs[0].QStart)
	assert.EqualValues(t, 8, segs[0].QEnd)
	assert.EqualValues(t, 3, segs[0].Interval.Size(), "ACGTACGT occurs at three SA positions (offsets 0,4,8) in this periodic text")
}

func TestBinarySeederSkipsUnmatchableBase(t *testing.T) {
	ref := codes("AAAACCCCGGGG") // no T anywhere
	idx := fmindex.NewNaive(ref)
	query := codes("AATAA")

	segs := seeder.NewBinarySeeder(idx).Seed(query)
	// position 2 ('T') cannot match at all; it must be skipped without
	// stalling the tiling.
	for _, s := range segs {
		assert.NotEqual(t, int32(2), s.QStart)
		assert.False(t, s.QStart <= 2 && 2 < s.QEnd, "no segment should span the unmatchable base")
	}
}

func TestExpandSegmentsResolvesForwardOccurrences(t *testing.T) {
	ref := codes("ACGTACGTTTTTGGGG")
	idx := fmindex.NewNaive(ref)

	b := pack.NewBuilder()
	require.NoError(t, b.AddContig("chr1", "", ref))
	p := b.Build()

	query := codes("ACGT")
	segs := seeder.NewBinarySeeder(idx).Seed(query)

	seeds := seeder.ExpandSegments(segs, idx, p, 100)
	require.NotEmpty(t, seeds)
	for _, s := range seeds {
		assert.True(t, s.OnForwardStrand)
		assert.Less(t, s.RStart, p.FwdSize())
	}
	assert.Greater(t, seeds.Score(), int64(0))
}

func TestExpandSegmentsDropsBridgingOccurrences(t *testing.T) {
	ref1 := codes("ACGTACGT")
	ref2 := codes("ACGTACGT")
	combined := append(append([]byte{}, ref1...), ref2...)
	idx := fmindex.NewNaive(combined)

	b := pack.NewBuilder()
	require.NoError(t, b.AddContig("chr1", "", ref1))
	require.NoError(t, b.AddContig("chr2", "", ref2))
	p := b.Build()

	// A query exactly straddling the contig boundary, repeated on both
	// sides, will enumerate an occurrence that bridges chr1/chr2.
	query := codes("GTAC")
	segs := seeder.NewBinarySeeder(idx).Seed(query)
	seeds := seeder.ExpandSegments(segs, idx, p, 100)
	for _, s := range seeds {
		assert.False(t, p.Bridging(s.RStart, int64(s.Length)))
	}
}
