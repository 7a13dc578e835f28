package seed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/bioalign/seed"
)

func TestQEndREndInvariant(t *testing.T) {
	s := seed.Seed{QStart: 10, Length: 5, RStart: 100, OnForwardStrand: true}
	assert.Equal(t, int32(15), s.QEnd())
	assert.Equal(t, int32(5), s.QEnd()-s.QStart)
	assert.Equal(t, int64(5), s.REnd()-s.RBegin())
}

func TestReverseStrandIntervalNormalizes(t *testing.T) {
	s := seed.Seed{QStart: 0, Length: 4, RStart: 103, OnForwardStrand: false}
	assert.Equal(t, int64(100), s.RBegin())
	assert.Equal(t, int64(104), s.REnd())
}

func TestLessOrdering(t *testing.T) {
	a := seed.Seed{QStart: 1, RStart: 5, Length: 3, OnForwardStrand: true, Ambiguity: 1}
	b := seed.Seed{QStart: 1, RStart: 5, Length: 3, OnForwardStrand: true, Ambiguity: 2}
	assert.True(t, seed.Less(a, b))
	assert.False(t, seed.Less(b, a))
}

func TestSetScore(t *testing.T) {
	s := seed.Set{{Length: 3}, {Length: 4}, {Length: 5}}
	assert.Equal(t, int64(12), s.Score())
}

func TestSplitMerge(t *testing.T) {
	s := seed.Set{{QStart: 0}, {QStart: 1}, {QStart: 2}}
	left, right := s.Split(1)
	assert.Len(t, left, 1)
	assert.Len(t, right, 2)
	merged := seed.Merge(left, right)
	assert.Equal(t, s, merged)
}
