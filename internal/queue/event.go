// Package queue defines the seat event payload exchanged over the message
// broker and the consumer that writes those events to the audit trail.
package queue

import "time"

// Event types.
const (
	SeatAssigned = "seat.assigned"
	SeatReleased = "seat.released"
)

// SeatEvent is published whenever a seat changes hands: a reservation or
// waitlist promotion (seat.assigned) or a cancellation or range release
// (seat.released). It carries enough for consumers to audit without asking
// the engine.
type SeatEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	UserID     int    `json:"user_id"`
	SeatID     int    `json:"seat_id"`
	Source     string `json:"source"`  // batch or http
	Command    string `json:"command"` // input line that caused the change
	OccurredAt string `json:"occurred_at"`
}

// Time parses OccurredAt.
func (e SeatEvent) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, e.OccurredAt)
}
