package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/labstack/gommon/log"
)

// Observer is notified of every executed command, in order.
type Observer interface {
	Observe(ctx context.Context, out Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, out Outcome)

func (f ObserverFunc) Observe(ctx context.Context, out Outcome) { f(ctx, out) }

// Stats summarises a batch run.
type Stats struct {
	Lines    int  // input lines read
	Executed int  // commands executed
	Skipped  int  // blank, malformed or unknown lines
	Quit     bool // processing stopped at Quit
}

// Runner processes a command stream one line at a time.
type Runner struct {
	d         *Dispatcher
	logger    *log.Logger
	observers []Observer
}

// NewRunner returns a runner executing through d. Observers receive each
// outcome after its lines are written.
func NewRunner(d *Dispatcher, logger *log.Logger, observers ...Observer) *Runner {
	return &Runner{d: d, logger: logger, observers: observers}
}

// Run reads commands from in and writes their output lines to out until EOF,
// Quit or ctx is done. Malformed lines are logged and skipped; only I/O
// failures and context cancellation end the run with an error.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	var st Stats
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	w := bufio.NewWriter(out)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			_ = w.Flush()
			return st, err
		}
		st.Lines++
		cmd, err := Parse(sc.Text())
		if err != nil {
			st.Skipped++
			if !errors.Is(err, ErrEmpty) {
				r.logger.Warnf("runner: line %d skipped: %v", st.Lines, err)
			}
			continue
		}

		outcome, err := r.d.Execute(cmd)
		st.Executed++
		for _, line := range outcome.Lines {
			if _, werr := fmt.Fprintln(w, line); werr != nil {
				return st, fmt.Errorf("write output: %w", werr)
			}
		}
		if outcome.Err != nil {
			r.logger.Debugf("runner: %s: %v", cmd, outcome.Err)
		}
		for _, o := range r.observers {
			o.Observe(ctx, outcome)
		}
		if errors.Is(err, ErrQuit) {
			st.Quit = true
			break
		}
	}
	if err := sc.Err(); err != nil {
		_ = w.Flush()
		return st, fmt.Errorf("read input: %w", err)
	}
	if err := w.Flush(); err != nil {
		return st, fmt.Errorf("write output: %w", err)
	}
	return st, nil
}
