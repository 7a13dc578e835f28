package soc

import "github.com/grailbio/bioalign/seed"

// Builder produces a PriorityQueue of strips from a seed set (C5, spec
// §4.4).
type Builder struct {
	width int64
}

// NewBuilder returns a Builder with the given strip width W.
func NewBuilder(width int64) *Builder {
	if width < 1 {
		width = 1
	}
	return &Builder{width: width}
}

// Build sorts seeds by diagonal coordinate and sweeps a window of width W
// over them, incrementally maintaining Order and calling PushBackNoOverlap
// at every window position (spec §4.4 steps 1-3), then finalizes the
// resulting queue into a heap (step 4).
func (b *Builder) Build(seeds seed.Set) *PriorityQueue {
	s := append(seed.Set(nil), seeds...)
	s.SortByDiagonal()

	pq := NewPriorityQueue(s)
	var order Order
	left := 0
	for right := 0; right < len(s); right++ {
		order = order.Add(s[right])
		for s[right].Diagonal()-s[left].Diagonal() >= b.width {
			order = order.Sub(s[left])
			left++
		}
		pq.PushBackNoOverlap(order, left, right+1)
	}
	pq.Finalize()
	return pq
}
