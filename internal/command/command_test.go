package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"

	"github.com/akvarun/PassFlow/internal/engine"
)

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr error
	}{
		{line: "Initialize(5)", want: Command{Op: OpInitialize, Args: []string{"5"}}},
		{line: "  Reserve( 1 , 2 )  ", want: Command{Op: OpReserve, Args: []string{"1", "2"}}},
		{line: "Available()", want: Command{Op: OpAvailable}},
		{line: "Quit", want: Command{Op: OpQuit}},
		{line: "Cancel(3,4", want: Command{Op: OpCancel, Args: []string{"3", "4"}}},
		{line: "Initialize(abc)", want: Command{Op: OpInitialize, Args: []string{"abc"}}},
		{line: "", wantErr: ErrEmpty},
		{line: "   ", wantErr: ErrEmpty},
		{line: "Book(1)", wantErr: ErrUnknownOp},
		{line: "Reserve(1)", wantErr: ErrArity},
		{line: "Available(1)", wantErr: ErrArity},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func execLines(t *testing.T, d *Dispatcher, line string) Outcome {
	t.Helper()
	cmd, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", line, err)
	}
	out, err := d.Execute(cmd)
	if err != nil && !errors.Is(err, ErrQuit) {
		t.Fatalf("Execute(%q) error = %v", line, err)
	}
	return out
}

func TestExecuteReportsValidationFailures(t *testing.T) {
	d := NewDispatcher(engine.New())
	tests := []struct {
		line    string
		want    string
		wantErr error
	}{
		{line: "Initialize(0)", want: invalidSeatCount, wantErr: engine.ErrInvalidArgument},
		{line: "Initialize(-3)", want: invalidSeatCount, wantErr: engine.ErrInvalidArgument},
		{line: "Initialize(ten)", want: invalidSeatCount, wantErr: engine.ErrInvalidArgument},
		{line: "AddSeats(0)", want: invalidSeatCount, wantErr: engine.ErrInvalidArgument},
		{line: "AddSeats(1.5)", want: invalidSeatCount, wantErr: engine.ErrInvalidArgument},
		{line: "ReleaseSeats(5,2)", want: invalidUserRange, wantErr: engine.ErrInvalidRange},
		{line: "ReleaseSeats(a,2)", want: invalidUserRange, wantErr: engine.ErrInvalidRange},
		{line: "Reserve(x,1)", want: invalidArguments, wantErr: engine.ErrInvalidArgument},
		{line: "Cancel(1,1)", want: "User 1 has no reservation for seat 1 to cancel", wantErr: engine.ErrNotFound},
		{line: "ExitWaitlist(4)", want: "User 4 is not in waitlist", wantErr: engine.ErrNotFound},
		{line: "UpdatePriority(4,2)", want: "User 4 priority is not updated", wantErr: engine.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out := execLines(t, d, tt.line)
			if !reflect.DeepEqual(out.Lines, []string{tt.want}) {
				t.Errorf("Lines = %q, want %q", out.Lines, tt.want)
			}
			if !errors.Is(out.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", out.Err, tt.wantErr)
			}
		})
	}
}

func TestExecuteTracksAssignments(t *testing.T) {
	d := NewDispatcher(engine.New())
	execLines(t, d, "Initialize(1)")
	execLines(t, d, "Reserve(10,5)")
	execLines(t, d, "Reserve(20,9)")

	out := execLines(t, d, "AddSeats(1)")
	wantLines := []string{
		"Additional 1 Seats are made available for reservation",
		"User 20 reserved seat 2",
	}
	if !reflect.DeepEqual(out.Lines, wantLines) {
		t.Errorf("Lines = %q, want %q", out.Lines, wantLines)
	}
	if want := []engine.Reservation{{UserID: 20, SeatID: 2}}; !reflect.DeepEqual(out.Assigned, want) {
		t.Errorf("Assigned = %+v, want %+v", out.Assigned, want)
	}

	out = execLines(t, d, "Cancel(1,10)")
	if want := []engine.Reservation{{UserID: 10, SeatID: 1}}; !reflect.DeepEqual(out.Released, want) {
		t.Errorf("Released = %+v, want %+v", out.Released, want)
	}
	if len(out.Assigned) != 0 {
		t.Errorf("Assigned = %+v, want none", out.Assigned)
	}
}

func TestExecuteReserveCheck(t *testing.T) {
	g := engine.NewGuarded(engine.New())
	d := NewDispatcher(g).WithReserveCheck(g.ReserveNew)
	execLines(t, d, "Initialize(2)")
	execLines(t, d, "Reserve(1,1)")

	out := execLines(t, d, "Reserve(1,1)")
	if want := []string{"User 1 already has a reservation or is in waitlist"}; !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("Lines = %q, want %q", out.Lines, want)
	}
	if !errors.Is(out.Err, engine.ErrAlreadyKnown) || len(out.Assigned) != 0 {
		t.Errorf("Err = %v, Assigned = %+v", out.Err, out.Assigned)
	}
	if got := g.Available(); got.Seats != 1 {
		t.Errorf("Available() = %+v, want 1 free seat", got)
	}

	// without the check a repeated user passes through to the engine
	plain := NewDispatcher(engine.New())
	execLines(t, plain, "Initialize(2)")
	execLines(t, plain, "Reserve(1,1)")
	if out := execLines(t, plain, "Reserve(1,1)"); out.Err != nil || len(out.Assigned) != 1 {
		t.Errorf("plain dispatcher Reserve = %+v", out)
	}
}

func TestExecuteQuit(t *testing.T) {
	d := NewDispatcher(engine.New())
	out, err := d.Execute(Command{Op: OpQuit})
	if !errors.Is(err, ErrQuit) {
		t.Fatalf("Execute(Quit) error = %v, want ErrQuit", err)
	}
	if !reflect.DeepEqual(out.Lines, []string{terminated}) {
		t.Errorf("Lines = %q", out.Lines)
	}
	if _, err := d.Execute(Command{Op: "Book"}); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("Execute(Book) error = %v, want ErrUnknownOp", err)
	}
}

const script = `Initialize(5)
Reserve(1, 1)
Reserve(2, 1)
Cancel(1, 1)
Reserve(3, 1)
PrintReservations()
Available()

Reserve(4, 1)
Reserve(5, 1)
Reserve(6, 3)
Reserve(7, 1)
Reserve(8, 1)
Bogus(1)
Available()
Cancel(4, 3)
ExitWaitlist(7)
UpdatePriority(8, 4)
AddSeats(2)
ReleaseSeats(2, 4)
PrintReservations()
Initialize(0)
ReleaseSeats(5, 2)
Quit()
Available()
`

const wantOutput = `5 Seats are made available for reservation
User 1 reserved seat 1
User 2 reserved seat 2
User 1 canceled their reservation
User 3 reserved seat 1
Seat 1, User 3
Seat 2, User 2
Total Seats Available : 3, Waitlist : 0
User 4 reserved seat 3
User 5 reserved seat 4
User 6 reserved seat 5
User 7 is added to the waiting list
User 8 is added to the waiting list
Total Seats Available : 0, Waitlist : 2
User 3 has no reservation for seat 4 to cancel
User 7 is removed from the waiting list
User 8 priority has been updated to 4
Additional 2 Seats are made available for reservation
User 8 reserved seat 6
Reservations of the Users in the range [2, 4] are released
Seat 4, User 5
Seat 5, User 6
Seat 6, User 8
Invalid input. Please provide a valid number of seats.
Invalid input. Please provide a valid range of users.
Program Terminated!!
`

func TestRunnerScript(t *testing.T) {
	var seen []Op
	obs := ObserverFunc(func(_ context.Context, out Outcome) {
		seen = append(seen, out.Command.Op)
	})
	r := NewRunner(NewDispatcher(engine.New()), quietLogger(), obs)

	var buf bytes.Buffer
	st, err := r.Run(context.Background(), strings.NewReader(script), &buf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := buf.String(); got != wantOutput {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, wantOutput)
	}
	if !st.Quit {
		t.Errorf("Stats.Quit = false, want true")
	}
	if st.Skipped != 2 {
		t.Errorf("Stats.Skipped = %d, want 2", st.Skipped)
	}
	if st.Executed != 22 {
		t.Errorf("Stats.Executed = %d, want 22", st.Executed)
	}
	if len(seen) != st.Executed || seen[len(seen)-1] != OpQuit {
		t.Errorf("observer saw %v", seen)
	}
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(NewDispatcher(engine.New()), quietLogger())
	var buf bytes.Buffer
	if _, err := r.Run(ctx, strings.NewReader("Initialize(1)\n"), &buf); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q after cancellation", buf.String())
	}
}
