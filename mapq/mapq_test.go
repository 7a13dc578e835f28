package mapq_test

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/align"
	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/mapq"
)

// scored builds an alignment whose query interval is [queryStart,
// queryStart+n) and whose frozen score is exactly n, using match=1 so the
// op length doubles as the score.
func scored(refID int, refStart, queryStart int64, n int) *align.Alignment {
	a := align.New(refID, refStart, queryStart, true)
	a.Append(sam.CigarEqual, n)
	_ = a.Freeze(1, 0, 0, 0)
	return a
}

// Scenario 4 of spec §8: two equally-scoring alignments on different
// contigs. The one on the lower-numbered contig is primary, regardless of
// which order the caller listed them in; the other survives as a zero-mapQ
// supplementary only if it doesn't overlap the primary.
func TestAssignTieGoesToLowerRefPositionWithZeroMapQSecondary(t *testing.T) {
	a := scored(0, 0, 0, 8)
	b := scored(1, 0, 100, 8)
	cfg := config.Default()
	cfg.MaxOverlapSupplementary = 0.5

	out := mapq.Assign([]*align.Alignment{a, b}, cfg)
	require.Len(t, out, 2)
	assert.Same(t, a, out[0])
	assert.Equal(t, 0.0, out[1].MapQ())
	assert.True(t, out[1].Supplementary())
}

// Same tie, but listed in the opposite order: the lower reference position
// still wins primary, proving the tie-break doesn't depend on caller order.
func TestAssignTieGoesToLowerRefPositionRegardlessOfListOrder(t *testing.T) {
	a := scored(0, 0, 0, 8)
	b := scored(1, 0, 100, 8)
	cfg := config.Default()
	cfg.MaxOverlapSupplementary = 0.5

	out := mapq.Assign([]*align.Alignment{b, a}, cfg)
	require.Len(t, out, 2)
	assert.Same(t, a, out[0])
	assert.Same(t, b, out[1])
}

// A tie on the same contig breaks by ascending RefStart.
func TestAssignTieOnSameContigGoesToLowerRefStart(t *testing.T) {
	a := scored(0, 500, 0, 8)
	b := scored(0, 100, 200, 8)
	cfg := config.Default()
	cfg.MaxOverlapSupplementary = 1.0

	out := mapq.Assign([]*align.Alignment{a, b}, cfg)
	require.Len(t, out, 2)
	assert.Same(t, b, out[0])
	assert.Same(t, a, out[1])
}

func TestAssignSingleAlignmentGetsHighConfidence(t *testing.T) {
	a := scored(0, 0, 0, 20)
	out := mapq.Assign([]*align.Alignment{a}, config.Default())
	require.Len(t, out, 1)
	assert.False(t, out[0].Supplementary())
	assert.Greater(t, out[0].MapQ(), 0.5)
}

func TestAssignOverlappingSecondaryIsDropped(t *testing.T) {
	a := scored(0, 0, 0, 20)
	b := scored(0, 5, 0, 10) // same query interval as a: pure overlap
	cfg := config.Default()
	cfg.MaxOverlapSupplementary = 0.1

	out := mapq.Assign([]*align.Alignment{a, b}, cfg)
	assert.Len(t, out, 1)
}

func TestAssignEmptyInput(t *testing.T) {
	assert.Empty(t, mapq.Assign(nil, config.Default()))
}
