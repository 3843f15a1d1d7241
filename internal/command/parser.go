// Package command turns input lines such as "Reserve(3,1)" into engine
// operations and renders each operation's result as output lines.
package command

import (
	"errors"
	"fmt"
	"strings"
)

// Op names one engine operation as it appears in the input.
type Op string

const (
	OpInitialize        Op = "Initialize"
	OpAvailable         Op = "Available"
	OpReserve           Op = "Reserve"
	OpCancel            Op = "Cancel"
	OpExitWaitlist      Op = "ExitWaitlist"
	OpUpdatePriority    Op = "UpdatePriority"
	OpAddSeats          Op = "AddSeats"
	OpPrintReservations Op = "PrintReservations"
	OpReleaseSeats      Op = "ReleaseSeats"
	OpQuit              Op = "Quit"
)

// arity is the number of arguments each operation takes.
var arity = map[Op]int{
	OpInitialize:        1,
	OpAvailable:         0,
	OpReserve:           2,
	OpCancel:            2,
	OpExitWaitlist:      1,
	OpUpdatePriority:    2,
	OpAddSeats:          1,
	OpPrintReservations: 0,
	OpReleaseSeats:      2,
	OpQuit:              0,
}

var (
	// ErrEmpty is returned by Parse for a blank line.
	ErrEmpty = errors.New("empty command")
	// ErrUnknownOp is returned for an operation name that is not recognised.
	ErrUnknownOp = errors.New("unknown operation")
	// ErrArity is returned when an operation gets the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
)

// Command is one parsed input line. Arguments stay as text; numeric
// validation is reported by the operation itself.
type Command struct {
	Op   Op
	Args []string
}

// String renders c in input syntax.
func (c Command) String() string {
	return fmt.Sprintf("%s(%s)", c.Op, strings.Join(c.Args, ","))
}

// Parse reads "Name(arg1,arg2,...)". Spaces around the name and the
// arguments are ignored, and a missing closing parenthesis is tolerated.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, ErrEmpty
	}

	name, rest, hasArgs := strings.Cut(line, "(")
	cmd := Command{Op: Op(strings.TrimSpace(name))}
	want, ok := arity[cmd.Op]
	if !ok {
		return Command{}, fmt.Errorf("%q: %w", cmd.Op, ErrUnknownOp)
	}

	if hasArgs {
		rest = strings.TrimSpace(rest)
		rest = strings.TrimSuffix(rest, ")")
		if strings.TrimSpace(rest) != "" {
			for _, a := range strings.Split(rest, ",") {
				cmd.Args = append(cmd.Args, strings.TrimSpace(a))
			}
		}
	}
	if len(cmd.Args) != want {
		return Command{}, fmt.Errorf("%s takes %d, got %d: %w", cmd.Op, want, len(cmd.Args), ErrArity)
	}
	return cmd, nil
}
