package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// Engine is the reservation authority for one venue.
type Engine struct {
	index    *UserIndex
	dir      *Directory
	pool     *SeatPool
	waitlist *Waitlist

	capacity int
	arrivals uint64 // next waitlist arrival sequence
	revision uint64 // bumped on every state change
}

// New returns an engine with no seats.
func New() *Engine {
	return &Engine{
		index:    NewUserIndex(),
		dir:      NewDirectory(),
		pool:     NewSeatPool(),
		waitlist: NewWaitlist(),
	}
}

// Capacity returns the number of seats created so far.
func (e *Engine) Capacity() int { return e.capacity }

// Revision changes whenever engine state changes.
func (e *Engine) Revision() uint64 { return e.revision }

// Initialize creates seatCount seats. Calling it again adds seatCount more
// seats numbered after the existing ones. Users already waiting are served
// from the new seats; their assignments are returned in the order made.
func (e *Engine) Initialize(seatCount int) ([]Reservation, error) {
	if seatCount <= 0 {
		return nil, fmt.Errorf("initialize with %d seats: %w", seatCount, ErrInvalidArgument)
	}
	e.grow(seatCount)
	return e.drain(), nil
}

// Known reports whether userID holds a seat or is on the waitlist.
func (e *Engine) Known(userID int) bool {
	if _, ok := e.dir.Get(userID); ok {
		return true
	}
	return e.waitlist.Contains(userID)
}

// Available reports the number of free seats and waiting users.
func (e *Engine) Available() Availability {
	return Availability{Seats: e.pool.Len(), Waitlist: e.waitlist.Len()}
}

// Reserve gives userID the lowest free seat, or queues the user when no seat
// is free. Callers are responsible for not reserving twice for one user.
func (e *Engine) Reserve(userID, priority int) ReserveResult {
	e.revision++
	if seat, ok := e.pool.Pop(); ok {
		e.bind(userID, seat)
		return ReserveResult{Reservation: Reservation{UserID: userID, SeatID: seat}}
	}
	e.waitlist.Push(WaitlistEntry{UserID: userID, Priority: priority, Arrival: e.arrivals})
	e.arrivals++
	return ReserveResult{Reservation: Reservation{UserID: userID}, Waitlisted: true}
}

// Cancel releases seatID held by userID. The seat goes to the best waiting
// user if there is one, otherwise back to the pool.
func (e *Engine) Cancel(seatID, userID int) (CancelResult, error) {
	if !e.dir.Holds(userID, seatID) {
		return CancelResult{}, fmt.Errorf("user %d seat %d: %w", userID, seatID, ErrNotFound)
	}
	e.revision++
	e.unbind(userID)
	res := CancelResult{Cancelled: Reservation{UserID: userID, SeatID: seatID}}
	if next, ok := e.waitlist.Pop(); ok {
		e.bind(next.UserID, seatID)
		res.Promoted = &Reservation{UserID: next.UserID, SeatID: seatID}
		return res, nil
	}
	e.pool.Push(seatID)
	return res, nil
}

// ExitWaitlist removes userID from the waitlist.
func (e *Engine) ExitWaitlist(userID int) error {
	if _, ok := e.waitlist.RemoveUser(userID); !ok {
		return fmt.Errorf("waitlist user %d: %w", userID, ErrNotFound)
	}
	e.revision++
	return nil
}

// UpdatePriority changes a waiting user's priority without changing their
// arrival order.
func (e *Engine) UpdatePriority(userID, priority int) error {
	if !e.waitlist.UpdatePriority(userID, priority) {
		return fmt.Errorf("waitlist user %d: %w", userID, ErrNotFound)
	}
	e.revision++
	return nil
}

// AddSeats grows the venue by count seats and serves waiting users from
// them. Assignments are returned in the order made.
func (e *Engine) AddSeats(count int) ([]Reservation, error) {
	if count <= 0 {
		return nil, fmt.Errorf("add %d seats: %w", count, ErrInvalidArgument)
	}
	e.grow(count)
	return e.drain(), nil
}

// ReleaseSeats frees the reservations of every user in [fromUser, toUser],
// drops users in that range from the waitlist and then serves the remaining
// waitlist from the freed seats.
func (e *Engine) ReleaseSeats(fromUser, toUser int) (ReleaseResult, error) {
	if toUser < fromUser {
		return ReleaseResult{}, fmt.Errorf("release users [%d, %d]: %w", fromUser, toUser, ErrInvalidRange)
	}
	e.revision++

	var res ReleaseResult
	e.index.AscendRange(fromUser, toUser, func(user, seat int) bool {
		res.Released = append(res.Released, Reservation{UserID: user, SeatID: seat})
		return true
	})
	for _, r := range res.Released {
		e.unbind(r.UserID)
	}
	res.Dropped = e.waitlist.Retain(func(w WaitlistEntry) bool {
		return w.UserID < fromUser || w.UserID > toUser
	})
	for _, r := range res.Released {
		e.pool.Push(r.SeatID)
	}
	res.Assignments = e.drain()
	return res, nil
}

// Reservations returns all active reservations sorted by seat.
func (e *Engine) Reservations() []Reservation {
	out := e.index.InOrder()
	slices.SortFunc(out, func(a, b Reservation) int { return cmp.Compare(a.SeatID, b.SeatID) })
	return out
}

// Snapshot is a copy of the complete engine state.
type Snapshot struct {
	Capacity     int             `json:"capacity"`
	FreeSeats    []int           `json:"free_seats"`
	Reservations []Reservation   `json:"reservations"`
	Waitlist     []WaitlistEntry `json:"waitlist"`
}

// Snapshot returns the current state. The waitlist is in service order.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Capacity:     e.capacity,
		FreeSeats:    e.pool.Seats(),
		Reservations: e.Reservations(),
		Waitlist:     e.waitlist.Entries(),
	}
}

func (e *Engine) grow(count int) {
	e.revision++
	for seat := e.capacity + 1; seat <= e.capacity+count; seat++ {
		e.pool.Push(seat)
	}
	e.capacity += count
}

// drain pairs the lowest free seat with the best waiting user until one side
// runs out.
func (e *Engine) drain() []Reservation {
	var assigned []Reservation
	for e.pool.Len() > 0 && e.waitlist.Len() > 0 {
		seat, _ := e.pool.Pop()
		next, _ := e.waitlist.Pop()
		e.bind(next.UserID, seat)
		assigned = append(assigned, Reservation{UserID: next.UserID, SeatID: seat})
	}
	return assigned
}

// bind and unbind keep the directory and the index in lockstep.
func (e *Engine) bind(user, seat int) {
	e.dir.Put(user, seat)
	e.index.Insert(user, seat)
}

func (e *Engine) unbind(user int) {
	e.dir.Delete(user)
	e.index.Delete(user)
}

// checkInvariants reports the first broken cross-structure invariant.
func (e *Engine) checkInvariants() error {
	if err := e.index.verify(); err != nil {
		return fmt.Errorf("user index: %w", err)
	}
	if e.index.Len() != e.dir.Len() {
		return fmt.Errorf("index holds %d users, directory %d", e.index.Len(), e.dir.Len())
	}
	for _, r := range e.index.InOrder() {
		if !e.dir.Holds(r.UserID, r.SeatID) {
			return fmt.Errorf("index has user %d on seat %d, directory disagrees", r.UserID, r.SeatID)
		}
	}
	if got := e.pool.Len() + e.dir.Len(); got != e.capacity {
		return fmt.Errorf("free %d + reserved %d != capacity %d", e.pool.Len(), e.dir.Len(), e.capacity)
	}
	seen := make(map[int]bool, e.capacity)
	for _, s := range e.pool.Seats() {
		if seen[s] {
			return fmt.Errorf("seat %d free twice", s)
		}
		seen[s] = true
	}
	for _, r := range e.index.InOrder() {
		if seen[r.SeatID] {
			return fmt.Errorf("seat %d both free and reserved or reserved twice", r.SeatID)
		}
		seen[r.SeatID] = true
	}
	for _, w := range e.waitlist.Entries() {
		if _, ok := e.dir.Get(w.UserID); ok {
			return fmt.Errorf("user %d both reserved and waiting", w.UserID)
		}
	}
	if e.pool.Len() > 0 && e.waitlist.Len() > 0 {
		return fmt.Errorf("%d free seats while %d users wait", e.pool.Len(), e.waitlist.Len())
	}
	return nil
}
