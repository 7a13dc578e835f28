package align_test

import (
	"math"
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/align"
)

func TestAppendMergesAdjacentRuns(t *testing.T) {
	a := align.New(0, 0, 0, true)
	a.Append(sam.CigarEqual, 4)
	a.Append(sam.CigarEqual, 4)
	require.NoError(t, a.Freeze(1, 4, 6, 1))
	assert.Len(t, a.Ops(), 1)
	assert.Equal(t, 8, a.Ops()[0].Len())
}

func TestQueryRefSpanInvariant(t *testing.T) {
	a := align.New(0, 100, 10, true)
	a.Append(sam.CigarEqual, 5)
	a.Append(sam.CigarInsertion, 3)
	a.Append(sam.CigarEqual, 5)
	require.NoError(t, a.Freeze(1, 4, 6, 1))
	assert.Equal(t, int64(13), a.QuerySpan()) // 5+3+5
	assert.Equal(t, int64(10), a.RefSpan())   // 5+5
}

func TestFreezeScoring(t *testing.T) {
	a := align.New(0, 0, 0, true)
	a.Append(sam.CigarEqual, 10)
	require.NoError(t, a.Freeze(2, 4, 6, 1))
	assert.Equal(t, int32(20), a.Score())
}

func TestMapQDefaultsToNaN(t *testing.T) {
	a := align.New(0, 0, 0, true)
	assert.True(t, math.IsNaN(a.MapQ()))
	a.SetMapQ(0.75)
	assert.Equal(t, 0.75, a.MapQ())
}

func TestAppendAfterFreezePanics(t *testing.T) {
	a := align.New(0, 0, 0, true)
	a.Append(sam.CigarEqual, 4)
	require.NoError(t, a.Freeze(1, 4, 6, 1))
	assert.Panics(t, func() { a.Append(sam.CigarEqual, 1) })
}

func TestConcatSumsOps(t *testing.T) {
	a := align.New(0, 0, 0, true)
	a.Append(sam.CigarEqual, 4)
	b := align.New(0, 4, 4, true)
	b.Append(sam.CigarInsertion, 2)
	b.Append(sam.CigarEqual, 3)
	require.NoError(t, a.Concat(b))
	require.NoError(t, a.Freeze(1, 4, 6, 1))
	assert.Equal(t, int64(9), a.QuerySpan())
	assert.Equal(t, int64(7), a.RefSpan())
}
