package soc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/bioalign/seed"
	"github.com/grailbio/bioalign/soc"
)

func mkSeed(diag int64, length int32) seed.Seed {
	return seed.Seed{QStart: 0, RStart: diag, Length: length, OnForwardStrand: true}
}

// End-to-end scenario 6 (spec §8): diagonals {0,0,0,100,100,200}, lengths all
// 10, strip width 5 -> three strips of total lengths 30, 20, 10 in that
// order.
func TestBuilderScenario6(t *testing.T) {
	seeds := seed.Set{
		mkSeed(0, 10), mkSeed(0, 10), mkSeed(0, 10),
		mkSeed(100, 10), mkSeed(100, 10),
		mkSeed(200, 10),
	}
	pq := soc.NewBuilder(5).Build(seeds)

	var got []int64
	for pq.Len() > 0 {
		e, err := pq.Pop()
		require.NoError(t, err)
		got = append(got, e.Order.AccumLength)
	}
	assert.Equal(t, []int64{30, 20, 10}, got)
}

func TestFinalizeYieldsNonIncreasingPops(t *testing.T) {
	seeds := seed.Set{
		mkSeed(0, 3), mkSeed(50, 7), mkSeed(50, 7), mkSeed(120, 1),
	}
	pq := soc.NewBuilder(2).Build(seeds)
	var prev *soc.Order
	for pq.Len() > 0 {
		e, err := pq.Pop()
		require.NoError(t, err)
		if prev != nil {
			assert.False(t, e.Order.Greater(*prev), "pop order must be non-increasing")
		}
		o := e.Order
		prev = &o
	}
}

func TestStripWidthOneEachSeedOwnStrip(t *testing.T) {
	seeds := seed.Set{mkSeed(0, 4), mkSeed(10, 4), mkSeed(20, 4)}
	pq := soc.NewBuilder(1).Build(seeds)
	assert.Equal(t, 3, pq.Len())
}

func TestPopBeforeFinalizeIsUsageError(t *testing.T) {
	pq := soc.NewPriorityQueue(seed.Set{mkSeed(0, 4)})
	_, err := pq.Pop()
	require.Error(t, err)
}

func TestPushAfterFinalizePanics(t *testing.T) {
	pq := soc.NewPriorityQueue(seed.Set{mkSeed(0, 4)})
	pq.PushBackNoOverlap(soc.Order{AccumLength: 4, Count: 1}, 0, 1)
	pq.Finalize()
	assert.Panics(t, func() { pq.PushBackNoOverlap(soc.Order{}, 0, 1) })
}

func TestEmptyQueuePopIsEmptyResult(t *testing.T) {
	pq := soc.NewPriorityQueue(seed.Set{})
	pq.Finalize()
	_, err := pq.Pop()
	require.Error(t, err)
}
