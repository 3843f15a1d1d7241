package command

import (
	"errors"
	"strconv"

	"github.com/akvarun/PassFlow/internal/engine"
)

// ErrQuit is returned by Execute for Quit. Callers stop processing input.
var ErrQuit = errors.New("quit")

// Engine is the operation set the dispatcher drives. Both *engine.Engine
// and *engine.Guarded satisfy it.
type Engine interface {
	Initialize(seatCount int) ([]engine.Reservation, error)
	Available() engine.Availability
	Reserve(userID, priority int) engine.ReserveResult
	Cancel(seatID, userID int) (engine.CancelResult, error)
	ExitWaitlist(userID int) error
	UpdatePriority(userID, priority int) error
	AddSeats(count int) ([]engine.Reservation, error)
	ReleaseSeats(fromUser, toUser int) (engine.ReleaseResult, error)
	Reservations() []engine.Reservation
}

// Outcome is the result of one command.
type Outcome struct {
	Command Command
	Lines   []string
	// Assigned lists seats handed to users, including waitlist promotions.
	Assigned []engine.Reservation
	// Released lists reservations that were taken back.
	Released []engine.Reservation
	// Err is the engine error reported by Lines, if any.
	Err error
}

// Dispatcher executes commands against an engine.
type Dispatcher struct {
	eng     Engine
	reserve func(userID, priority int) (engine.ReserveResult, error)
}

// NewDispatcher returns a dispatcher driving eng.
func NewDispatcher(eng Engine) *Dispatcher {
	return &Dispatcher{eng: eng}
}

// WithReserveCheck routes Reserve through fn, which may refuse the request.
// The HTTP service uses it to reject users who already hold a seat or wait
// for one; batch input keeps passing Reserve straight to the engine.
func (d *Dispatcher) WithReserveCheck(fn func(userID, priority int) (engine.ReserveResult, error)) *Dispatcher {
	d.reserve = fn
	return d
}

// Execute runs cmd. Engine failures are reported in the outcome and never
// returned; the only errors are ErrQuit and ErrUnknownOp.
func (d *Dispatcher) Execute(cmd Command) (Outcome, error) {
	out := Outcome{Command: cmd}
	switch cmd.Op {
	case OpInitialize:
		n, ok := intArgs(cmd.Args)
		if !ok {
			out.say(invalidSeatCount)
			out.Err = engine.ErrInvalidArgument
			break
		}
		assigned, err := d.eng.Initialize(n[0])
		if err != nil {
			out.say(invalidSeatCount)
			out.Err = err
			break
		}
		out.say(seatsInitialized(n[0]))
		out.assign(assigned...)

	case OpAvailable:
		out.say(availability(d.eng.Available()))

	case OpReserve:
		n, ok := intArgs(cmd.Args)
		if !ok {
			out.invalid()
			break
		}
		var res engine.ReserveResult
		if d.reserve != nil {
			var err error
			if res, err = d.reserve(n[0], n[1]); err != nil {
				out.say(alreadyKnown(n[0]))
				out.Err = err
				break
			}
		} else {
			res = d.eng.Reserve(n[0], n[1])
		}
		if res.Waitlisted {
			out.say(waitlisted(n[0]))
			break
		}
		out.assign(res.Reservation)

	case OpCancel:
		n, ok := intArgs(cmd.Args)
		if !ok {
			out.invalid()
			break
		}
		seat, user := n[0], n[1]
		res, err := d.eng.Cancel(seat, user)
		if err != nil {
			out.say(noReservation(user, seat))
			out.Err = err
			break
		}
		out.say(cancelled(user))
		out.Released = append(out.Released, res.Cancelled)
		if res.Promoted != nil {
			out.assign(*res.Promoted)
		}

	case OpExitWaitlist:
		n, ok := intArgs(cmd.Args)
		if !ok {
			out.invalid()
			break
		}
		if err := d.eng.ExitWaitlist(n[0]); err != nil {
			out.say(notWaitlisted(n[0]))
			out.Err = err
			break
		}
		out.say(leftWaitlist(n[0]))

	case OpUpdatePriority:
		n, ok := intArgs(cmd.Args)
		if !ok {
			out.invalid()
			break
		}
		if err := d.eng.UpdatePriority(n[0], n[1]); err != nil {
			out.say(priorityNotUpdated(n[0]))
			out.Err = err
			break
		}
		out.say(priorityUpdated(n[0], n[1]))

	case OpAddSeats:
		n, ok := intArgs(cmd.Args)
		if !ok {
			out.say(invalidSeatCount)
			out.Err = engine.ErrInvalidArgument
			break
		}
		assigned, err := d.eng.AddSeats(n[0])
		if err != nil {
			out.say(invalidSeatCount)
			out.Err = err
			break
		}
		out.say(seatsAdded(n[0]))
		out.assign(assigned...)

	case OpPrintReservations:
		for _, r := range d.eng.Reservations() {
			out.say(seatLine(r))
		}

	case OpReleaseSeats:
		n, ok := intArgs(cmd.Args)
		if !ok {
			out.say(invalidUserRange)
			out.Err = engine.ErrInvalidRange
			break
		}
		res, err := d.eng.ReleaseSeats(n[0], n[1])
		if err != nil {
			out.say(invalidUserRange)
			out.Err = err
			break
		}
		out.say(rangeReleased(n[0], n[1]))
		out.Released = append(out.Released, res.Released...)
		out.assign(res.Assignments...)

	case OpQuit:
		out.say(terminated)
		return out, ErrQuit

	default:
		return out, ErrUnknownOp
	}
	return out, nil
}

func (o *Outcome) say(line string) {
	o.Lines = append(o.Lines, line)
}

// assign records seat assignments and reports each one in order.
func (o *Outcome) assign(rs ...engine.Reservation) {
	for _, r := range rs {
		o.Assigned = append(o.Assigned, r)
		o.say(reserved(r))
	}
}

func (o *Outcome) invalid() {
	o.say(invalidArguments)
	o.Err = engine.ErrInvalidArgument
}

func intArgs(args []string) ([]int, bool) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
