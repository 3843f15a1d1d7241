package engine

import (
	"container/heap"
	"slices"
)

// seatHeap implements heap.Interface over seat numbers, smallest first.
type seatHeap []int

func (h seatHeap) Len() int           { return len(h) }
func (h seatHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h seatHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *seatHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *seatHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// SeatPool holds the free seats and always yields the lowest-numbered one.
type SeatPool struct {
	seats seatHeap
}

// NewSeatPool returns an empty pool.
func NewSeatPool() *SeatPool {
	return &SeatPool{}
}

// Push returns seat to the pool.
func (p *SeatPool) Push(seat int) {
	heap.Push(&p.seats, seat)
}

// Pop removes and returns the lowest free seat. ok is false when the pool
// is empty.
func (p *SeatPool) Pop() (seat int, ok bool) {
	if len(p.seats) == 0 {
		return 0, false
	}
	return heap.Pop(&p.seats).(int), true
}

// Peek returns the lowest free seat without removing it.
func (p *SeatPool) Peek() (int, bool) {
	if len(p.seats) == 0 {
		return 0, false
	}
	return p.seats[0], true
}

// Len returns the number of free seats.
func (p *SeatPool) Len() int { return len(p.seats) }

// Seats returns the free seats in ascending order.
func (p *SeatPool) Seats() []int {
	out := slices.Clone([]int(p.seats))
	slices.Sort(out)
	return out
}
