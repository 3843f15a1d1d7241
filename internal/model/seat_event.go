// Package model holds the row types read and written by the repositories.
package model

import "time"

// SeatEvent is one row of the `seat_events` audit table. Rows are written
// by the audit consumer and never read back into the engine.
//
// Fields:
//
//	ID         – primary key identifier.
//	EventID    – broker event ID, unique; duplicates are ignored.
//	Type       – seat.assigned or seat.released.
//	UserID     – user gaining or losing the seat.
//	SeatID     – seat that changed hands.
//	Source     – batch or http.
//	Command    – input line that caused the change.
//	OccurredAt – when the engine made the change.
//	CreatedAt  – when the row was inserted.
type SeatEvent struct {
	ID         uint64    `db:"id" json:"id"`
	EventID    string    `db:"event_id" json:"event_id"`
	Type       string    `db:"type" json:"type"`
	UserID     int64     `db:"user_id" json:"user_id"`
	SeatID     int64     `db:"seat_id" json:"seat_id"`
	Source     string    `db:"source" json:"source"`
	Command    string    `db:"command" json:"command"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
