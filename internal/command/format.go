package command

import (
	"fmt"

	"github.com/akvarun/PassFlow/internal/engine"
)

// Output wording, one function per message.

const (
	invalidSeatCount = "Invalid input. Please provide a valid number of seats."
	invalidUserRange = "Invalid input. Please provide a valid range of users."
	invalidArguments = "Invalid input. Please provide integer arguments."
	terminated       = "Program Terminated!!"
)

func seatsInitialized(n int) string {
	return fmt.Sprintf("%d Seats are made available for reservation", n)
}

func availability(a engine.Availability) string {
	return fmt.Sprintf("Total Seats Available : %d, Waitlist : %d", a.Seats, a.Waitlist)
}

func reserved(r engine.Reservation) string {
	return fmt.Sprintf("User %d reserved seat %d", r.UserID, r.SeatID)
}

func waitlisted(user int) string {
	return fmt.Sprintf("User %d is added to the waiting list", user)
}

func alreadyKnown(user int) string {
	return fmt.Sprintf("User %d already has a reservation or is in waitlist", user)
}

func cancelled(user int) string {
	return fmt.Sprintf("User %d canceled their reservation", user)
}

func noReservation(user, seat int) string {
	return fmt.Sprintf("User %d has no reservation for seat %d to cancel", user, seat)
}

func leftWaitlist(user int) string {
	return fmt.Sprintf("User %d is removed from the waiting list", user)
}

func notWaitlisted(user int) string {
	return fmt.Sprintf("User %d is not in waitlist", user)
}

func priorityUpdated(user, priority int) string {
	return fmt.Sprintf("User %d priority has been updated to %d", user, priority)
}

func priorityNotUpdated(user int) string {
	return fmt.Sprintf("User %d priority is not updated", user)
}

func seatsAdded(n int) string {
	return fmt.Sprintf("Additional %d Seats are made available for reservation", n)
}

func rangeReleased(from, to int) string {
	return fmt.Sprintf("Reservations of the Users in the range [%d, %d] are released", from, to)
}

func seatLine(r engine.Reservation) string {
	return fmt.Sprintf("Seat %d, User %d", r.SeatID, r.UserID)
}
