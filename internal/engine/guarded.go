package engine

import (
	"fmt"
	"sync"
)

// Guarded serialises access to an Engine with one exclusive lock per
// operation. The four structures are updated together, so there is no finer
// grained locking to offer.
type Guarded struct {
	mu sync.Mutex
	e  *Engine
}

// NewGuarded wraps e. e must not be used directly afterwards.
func NewGuarded(e *Engine) *Guarded {
	return &Guarded{e: e}
}

// Do runs fn with exclusive access to the engine. Use it when several
// operations must appear atomic to other callers.
func (g *Guarded) Do(fn func(e *Engine)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.e)
}

func (g *Guarded) Initialize(seatCount int) ([]Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.Initialize(seatCount)
}

func (g *Guarded) Available() Availability {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.Available()
}

func (g *Guarded) Reserve(userID, priority int) ReserveResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.Reserve(userID, priority)
}

// ReserveNew reserves like Reserve but refuses a user the engine already
// knows, so untrusted callers cannot overwrite an existing reservation. The
// check and the reservation happen under one lock.
func (g *Guarded) ReserveNew(userID, priority int) (res ReserveResult, err error) {
	g.Do(func(e *Engine) {
		if e.Known(userID) {
			err = fmt.Errorf("reserve user %d: %w", userID, ErrAlreadyKnown)
			return
		}
		res = e.Reserve(userID, priority)
	})
	return res, err
}

func (g *Guarded) Cancel(seatID, userID int) (CancelResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.Cancel(seatID, userID)
}

func (g *Guarded) ExitWaitlist(userID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.ExitWaitlist(userID)
}

func (g *Guarded) UpdatePriority(userID, priority int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.UpdatePriority(userID, priority)
}

func (g *Guarded) AddSeats(count int) ([]Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.AddSeats(count)
}

func (g *Guarded) ReleaseSeats(fromUser, toUser int) (ReleaseResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.ReleaseSeats(fromUser, toUser)
}

func (g *Guarded) Reservations() []Reservation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.Reservations()
}

func (g *Guarded) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.Snapshot()
}

func (g *Guarded) Revision() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.e.Revision()
}
