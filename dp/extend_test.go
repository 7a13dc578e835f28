package dp_test

import (
	"strings"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/config"
	"github.com/grailbio/bioalign/dp"
	"github.com/grailbio/bioalign/pack"
	"github.com/grailbio/bioalign/seed"
	"github.com/grailbio/bioalign/seq"
)

func buildPack(t *testing.T, contigs ...string) *pack.Pack {
	t.Helper()
	b := pack.NewBuilder()
	for _, c := range contigs {
		require.NoError(t, b.AddContig("ctg", "", seq.Encode([]byte(c))))
	}
	return b.Build()
}

// End-to-end scenario 1 of spec §8: a single exact-match seed spanning the
// whole query should extend to a plain 8= alignment with no clipping.
func TestExtendChainExactMatch(t *testing.T) {
	p := buildPack(t, "ACGTACGTACGT")
	query := seq.Encode([]byte("ACGTACGT"))
	chain := seed.Set{{QStart: 0, Length: 8, RStart: 0, OnForwardStrand: true}}

	a, err := dp.ExtendChain(chain, query, p, 0, config.Default())
	require.NoError(t, err)
	require.Len(t, a.Ops(), 1)
	assert.Equal(t, sam.CigarEqual, a.Ops()[0].Type())
	assert.Equal(t, 8, a.Ops()[0].Len())
	assert.Equal(t, int64(0), a.RefStart)
	assert.Equal(t, int32(8*config.Default().MatchScore), a.Score())
}

// Scenario 2 of spec §8: a reverse-strand hit should extend cleanly using
// the reverse-complemented query, still producing a full-length exact match.
func TestExtendChainReverseStrand(t *testing.T) {
	p := buildPack(t, "ACGTACGTACGT")
	// "CGTACGTA" is the reverse complement of "TACGTACG"; the seed records
	// its ref interval in ascending forward coordinates per seed.RBegin/REnd
	// (ref pos [1,9), i.e. "CGTACGTA").
	query := seq.Encode([]byte("TACGTACG"))
	chain := seed.Set{{QStart: 0, Length: 8, RStart: 8, OnForwardStrand: false}}

	a, err := dp.ExtendChain(chain, query, p, 0, config.Default())
	require.NoError(t, err)
	require.Len(t, a.Ops(), 1)
	assert.Equal(t, sam.CigarEqual, a.Ops()[0].Type())
	assert.Equal(t, 8, a.Ops()[0].Len())
	assert.False(t, a.OnForward)
}

// Scenario 5 of spec §8: a 10bp insertion in the middle of the chain should
// surface as an I run flanked by = runs, with the bandwidth covering it.
func TestExtendChainInsertionBetweenSeeds(t *testing.T) {
	refStr := "AAAAAAAAAACCCCCCCCCC"
	p := buildPack(t, refStr)
	// query = ref[0:10] + 10bp insertion + ref[10:20]
	queryStr := "AAAAAAAAAA" + "TTTTTTTTTT" + "CCCCCCCCCC"
	query := seq.Encode([]byte(queryStr))
	chain := seed.Set{
		{QStart: 0, Length: 10, RStart: 0, OnForwardStrand: true},
		{QStart: 20, Length: 10, RStart: 10, OnForwardStrand: true},
	}

	cfg := config.Default()
	cfg.MinBandwidthGapFilling = 16
	a, err := dp.ExtendChain(chain, query, p, 0, cfg)
	require.NoError(t, err)

	var insLen int
	for _, op := range a.Ops() {
		if op.Type() == sam.CigarInsertion {
			insLen += op.Len()
		}
	}
	assert.Equal(t, 10, insLen)
	assert.Equal(t, int64(20), a.RefSpan())
	assert.Equal(t, int64(30), a.QuerySpan())
}

// Z-drop (spec §4.6, GLOSSARY: aborts once the running score falls too far
// below its maximum so far) must soft-clip a low-identity tail rather than
// running through it to a coincidental match on the far side. The right
// extension window here is 4 mismatched bases followed by 30 bases that
// happen to match; a DP with no Z-drop recovers across the mismatch dip and
// consumes the whole window, but Z-drop should stop it right at the dip.
func TestExtendChainZDropClipsLowIdentityTail(t *testing.T) {
	refStr := "ACGTACGT" + "AAAA" + strings.Repeat("C", 30)
	queryStr := "ACGTACGT" + "TTTT" + strings.Repeat("C", 30)
	p := buildPack(t, refStr)
	query := seq.Encode([]byte(queryStr))
	chain := seed.Set{{QStart: 0, Length: 8, RStart: 0, OnForwardStrand: true}}

	cfg := config.Default()
	cfg.ZDrop = 10 // the mismatch dip reaches 16 below the running best, so this must trigger

	a, err := dp.ExtendChain(chain, query, p, 0, cfg)
	require.NoError(t, err)

	ops := a.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, sam.CigarEqual, ops[0].Type())
	assert.Equal(t, 8, ops[0].Len())
	assert.Equal(t, sam.CigarSoftClipped, ops[1].Type())
	assert.Equal(t, 34, ops[1].Len())
	assert.Equal(t, int64(8), a.RefSpan())
}

func TestExtendChainRequiresSeeds(t *testing.T) {
	p := buildPack(t, "ACGT")
	_, err := dp.ExtendChain(nil, seq.Encode([]byte("A")), p, 0, config.Default())
	assert.Error(t, err)
}
