// Package repository stores the seat event audit trail in MySQL.
package repository

import "errors"

// ErrInvalidEvent is returned when an event cannot be stored: an unknown
// type, a missing ID or an unparsable timestamp. Consumers should drop the
// message rather than retry it.
var ErrInvalidEvent = errors.New("invalid event")
