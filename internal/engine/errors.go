package engine

import "errors"

// ErrInvalidArgument is returned for a non-positive seat count.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound is returned when the reservation or waitlist entry an
// operation targets does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidRange is returned by ReleaseSeats when the upper bound is below
// the lower bound.
var ErrInvalidRange = errors.New("invalid range")

// ErrAlreadyKnown is returned by Guarded.ReserveNew when the user already
// holds a seat or is waiting for one.
var ErrAlreadyKnown = errors.New("user already holds a seat or is waitlisted")
