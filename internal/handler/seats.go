package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/akvarun/PassFlow/internal/command"
	"github.com/akvarun/PassFlow/internal/engine"
	"github.com/akvarun/PassFlow/internal/model"
)

// EventLister reads a user's audit trail. *repository.SeatEventRepo
// satisfies it.
type EventLister interface {
	ListByUser(ctx context.Context, userID, limit int) ([]model.SeatEvent, error)
}

// SeatHandler serves the seat engine. Every mutating route is executed as a
// command so HTTP clients get the same messages as batch input and observers
// see the same outcomes.
type SeatHandler struct {
	Engine    *engine.Guarded
	Observers []command.Observer // notified after every executed command
	Events    EventLister        // nil when the audit store is disabled

	// mu orders mutations and their observer calls, so events leave in the
	// order the engine applied them.
	mu         sync.Mutex
	dispatcher *command.Dispatcher
}

// NewSeatHandler wires a handler around g. It panics if g is nil.
func NewSeatHandler(g *engine.Guarded, events EventLister, observers ...command.Observer) *SeatHandler {
	if g == nil {
		panic("nil engine passed to NewSeatHandler")
	}
	return &SeatHandler{
		Engine:     g,
		Observers:  observers,
		Events:     events,
		dispatcher: command.NewDispatcher(g).WithReserveCheck(g.ReserveNew),
	}
}

type countRequest struct {
	Count int `json:"count"`
}

type reserveRequest struct {
	UserID   int `json:"user_id"`
	Priority int `json:"priority"`
}

type priorityRequest struct {
	Priority int `json:"priority"`
}

type releaseRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type commandRequest struct {
	Command string `json:"command"`
}

// commandResponse is the body of every mutating route.
type commandResponse struct {
	Command  string               `json:"command"`
	Lines    []string             `json:"lines"`
	Assigned []engine.Reservation `json:"assigned"`
	Released []engine.Reservation `json:"released"`
	Error    string               `json:"error,omitempty"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}

// statusFor maps an engine failure to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyKnown):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// exec runs cmd against the engine, notifies observers and writes the
// outcome. Parse-level failures never reach the engine.
func (h *SeatHandler) exec(c echo.Context, cmd command.Command) error {
	if cmd.Op == command.OpQuit {
		return badRequest(c, "Quit is only accepted in batch input")
	}
	out, err := h.apply(c.Request().Context(), cmd)
	if err != nil {
		return badRequest(c, err.Error())
	}

	resp := commandResponse{
		Command:  cmd.String(),
		Lines:    out.Lines,
		Assigned: out.Assigned,
		Released: out.Released,
	}
	if resp.Assigned == nil {
		resp.Assigned = []engine.Reservation{}
	}
	if resp.Released == nil {
		resp.Released = []engine.Reservation{}
	}
	if out.Err != nil {
		resp.Error = out.Err.Error()
	}
	return c.JSON(statusFor(out.Err), resp)
}

// apply executes cmd and notifies observers before the next mutation can
// start. The change is already applied, so observers get a context that a
// disconnecting client cannot cancel.
func (h *SeatHandler) apply(ctx context.Context, cmd command.Command) (command.Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out, err := h.dispatcher.Execute(cmd)
	if err != nil {
		return out, err
	}
	ctx = context.WithoutCancel(ctx)
	for _, o := range h.Observers {
		o.Observe(ctx, out)
	}
	return out, nil
}

func args(vals ...int) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.Itoa(v)
	}
	return out
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

// Availability handles GET /v1/availability.
func (h *SeatHandler) Availability(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Engine.Available())
}

// Reservations handles GET /v1/reservations, ordered by seat.
func (h *SeatHandler) Reservations(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"reservations": h.Engine.Reservations()})
}

// State handles GET /v1/state with the full engine snapshot.
func (h *SeatHandler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Engine.Snapshot())
}

// Initialize handles POST /v1/seats/init.
func (h *SeatHandler) Initialize(c echo.Context) error {
	var req countRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.exec(c, command.Command{Op: command.OpInitialize, Args: args(req.Count)})
}

// AddSeats handles POST /v1/seats.
func (h *SeatHandler) AddSeats(c echo.Context) error {
	var req countRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.exec(c, command.Command{Op: command.OpAddSeats, Args: args(req.Count)})
}

// Reserve handles POST /v1/reservations. The user either gets a seat or
// joins the waitlist; both answer 200. A user who already holds a seat or
// waits for one gets 409 and the engine is left untouched.
func (h *SeatHandler) Reserve(c echo.Context) error {
	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.exec(c, command.Command{Op: command.OpReserve, Args: args(req.UserID, req.Priority)})
}

// Cancel handles DELETE /v1/reservations/:seat?user_id=U.
func (h *SeatHandler) Cancel(c echo.Context) error {
	seat, err := intParam(c, "seat")
	if err != nil {
		return badRequest(c, err.Error())
	}
	user, err := strconv.Atoi(c.QueryParam("user_id"))
	if err != nil {
		return badRequest(c, "invalid user_id")
	}
	return h.exec(c, command.Command{Op: command.OpCancel, Args: args(seat, user)})
}

// ExitWaitlist handles DELETE /v1/waitlist/:user.
func (h *SeatHandler) ExitWaitlist(c echo.Context) error {
	user, err := intParam(c, "user")
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.exec(c, command.Command{Op: command.OpExitWaitlist, Args: args(user)})
}

// UpdatePriority handles PUT /v1/waitlist/:user.
func (h *SeatHandler) UpdatePriority(c echo.Context) error {
	user, err := intParam(c, "user")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req priorityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.exec(c, command.Command{Op: command.OpUpdatePriority, Args: args(user, req.Priority)})
}

// ReleaseSeats handles POST /v1/releases for the inclusive user range
// [from, to].
func (h *SeatHandler) ReleaseSeats(c echo.Context) error {
	var req releaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	return h.exec(c, command.Command{Op: command.OpReleaseSeats, Args: args(req.From, req.To)})
}

// Command handles POST /v1/commands with a single command line in the batch
// syntax, e.g. {"command":"Reserve(3,1)"}.
func (h *SeatHandler) Command(c echo.Context) error {
	var req commandRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	cmd, err := command.Parse(req.Command)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.exec(c, cmd)
}

// UserEvents handles GET /v1/users/:id/events?limit=N from the audit store.
func (h *SeatHandler) UserEvents(c echo.Context) error {
	if h.Events == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "audit store disabled"})
	}
	user, err := intParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	events, err := h.Events.ListByUser(c.Request().Context(), user, limit)
	if err != nil {
		c.Logger().Errorf("list events for user %d: %v", user, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load events"})
	}
	return c.JSON(http.StatusOK, map[string]any{"user_id": user, "events": events})
}
