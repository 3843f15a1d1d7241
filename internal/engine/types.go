package engine

import "math"

const (
	minInt = math.MinInt
	maxInt = math.MaxInt
)

// Reservation is an active seat assignment.
type Reservation struct {
	UserID int `json:"user_id"`
	SeatID int `json:"seat_id"`
}

// WaitlistEntry is a user waiting for a seat. Arrival is assigned once when
// the entry is created and breaks ties between equal priorities.
type WaitlistEntry struct {
	UserID   int    `json:"user_id"`
	Priority int    `json:"priority"`
	Arrival  uint64 `json:"arrival"`
}

// Availability is the result of Available.
type Availability struct {
	Seats    int `json:"seats"`
	Waitlist int `json:"waitlist"`
}

// ReserveResult describes the outcome of Reserve. When Waitlisted is true
// Reservation.SeatID is zero.
type ReserveResult struct {
	Reservation Reservation `json:"reservation"`
	Waitlisted  bool        `json:"waitlisted"`
}

// CancelResult describes a successful Cancel. Promoted is set when the freed
// seat went straight to the best waitlisted user.
type CancelResult struct {
	Cancelled Reservation  `json:"cancelled"`
	Promoted  *Reservation `json:"promoted,omitempty"`
}

// ReleaseResult describes a ReleaseSeats call.
type ReleaseResult struct {
	Released    []Reservation   `json:"released"`
	Dropped     []WaitlistEntry `json:"dropped"`
	Assignments []Reservation   `json:"assignments"`
}
