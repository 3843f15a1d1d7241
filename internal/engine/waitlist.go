package engine

import (
	"container/heap"
	"slices"
)

// waitHeap implements heap.Interface with the best entry at index 0.
type waitHeap []WaitlistEntry

func (h waitHeap) Len() int           { return len(h) }
func (h waitHeap) Less(i, j int) bool { return compareEntries(h[i], h[j]) > 0 }
func (h waitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *waitHeap) Push(x any) { *h = append(*h, x.(WaitlistEntry)) }

func (h *waitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// compareEntries is positive when a should be served before b: higher
// priority first, then earlier arrival.
func compareEntries(a, b WaitlistEntry) int {
	if a.Priority != b.Priority {
		if a.Priority > b.Priority {
			return 1
		}
		return -1
	}
	switch {
	case a.Arrival < b.Arrival:
		return 1
	case a.Arrival > b.Arrival:
		return -1
	}
	return 0
}

// Waitlist orders waiting users by priority and arrival.
//
// Looking a user up is a linear scan of the heap array. Waitlists are small
// and a user may be queued more than once, which a position map keyed by
// user could not represent; once found, removal and re-prioritisation are
// O(log n).
type Waitlist struct {
	entries waitHeap
}

// NewWaitlist returns an empty waitlist.
func NewWaitlist() *Waitlist {
	return &Waitlist{}
}

// Push enqueues e.
func (w *Waitlist) Push(e WaitlistEntry) {
	heap.Push(&w.entries, e)
}

// Pop removes and returns the best entry.
func (w *Waitlist) Pop() (WaitlistEntry, bool) {
	if len(w.entries) == 0 {
		return WaitlistEntry{}, false
	}
	return heap.Pop(&w.entries).(WaitlistEntry), true
}

// Peek returns the best entry without removing it.
func (w *Waitlist) Peek() (WaitlistEntry, bool) {
	if len(w.entries) == 0 {
		return WaitlistEntry{}, false
	}
	return w.entries[0], true
}

// Len returns the number of waiting entries.
func (w *Waitlist) Len() int { return len(w.entries) }

// RemoveUser removes the first entry for user and reports whether one was
// found.
func (w *Waitlist) RemoveUser(user int) (WaitlistEntry, bool) {
	i := w.indexOf(user)
	if i < 0 {
		return WaitlistEntry{}, false
	}
	return heap.Remove(&w.entries, i).(WaitlistEntry), true
}

// UpdatePriority changes the priority of the first entry for user. The
// entry keeps its original arrival.
func (w *Waitlist) UpdatePriority(user, priority int) bool {
	i := w.indexOf(user)
	if i < 0 {
		return false
	}
	w.entries[i].Priority = priority
	heap.Fix(&w.entries, i)
	return true
}

// Retain rebuilds the waitlist with only the entries keep accepts and
// returns the ones dropped. Kept entries retain their arrival.
func (w *Waitlist) Retain(keep func(WaitlistEntry) bool) []WaitlistEntry {
	var dropped []WaitlistEntry
	kept := w.entries[:0]
	for _, e := range w.entries {
		if keep(e) {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e)
		}
	}
	clear(w.entries[len(kept):])
	w.entries = kept
	heap.Init(&w.entries)
	return dropped
}

// Entries returns a snapshot of the waitlist in service order.
func (w *Waitlist) Entries() []WaitlistEntry {
	out := slices.Clone([]WaitlistEntry(w.entries))
	slices.SortFunc(out, func(a, b WaitlistEntry) int { return compareEntries(b, a) })
	return out
}

// Contains reports whether user has an entry.
func (w *Waitlist) Contains(user int) bool { return w.indexOf(user) >= 0 }

func (w *Waitlist) indexOf(user int) int {
	for i, e := range w.entries {
		if e.UserID == user {
			return i
		}
	}
	return -1
}
