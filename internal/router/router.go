// Package router registers the HTTP routes of the seat API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/akvarun/PassFlow/internal/handler"
)

// Middlewares are the optional Redis-backed layers. Nil entries are skipped.
type Middlewares struct {
	RateLimit echo.MiddlewareFunc // every /v1 route
	Cache     echo.MiddlewareFunc // read routes only
}

func use(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := mws[:0]
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers the health check, which stays outside rate
// limiting so probes never get a 429.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSeats registers the seat engine endpoints under /v1.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, mw Middlewares) {
	g := e.Group("/v1", use(mw.RateLimit)...)

	// reads, cached per engine revision
	cached := use(mw.Cache)
	g.GET("/availability", h.Availability, cached...)
	g.GET("/reservations", h.Reservations, cached...)
	g.GET("/state", h.State, cached...)

	g.POST("/seats/init", h.Initialize)
	g.POST("/seats", h.AddSeats)
	g.POST("/reservations", h.Reserve)
	g.DELETE("/reservations/:seat", h.Cancel)
	g.DELETE("/waitlist/:user", h.ExitWaitlist)
	g.PUT("/waitlist/:user", h.UpdatePriority)
	g.POST("/releases", h.ReleaseSeats)
	g.POST("/commands", h.Command)

	// audit trail, read from MySQL and never cached
	g.GET("/users/:id/events", h.UserEvents)
}
