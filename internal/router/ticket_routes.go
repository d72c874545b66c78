package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
)

// RegisterTickets registers ticket endpoints under /v1. None of these
// routes are cached: the issuance path must always hit the database so
// the capacity check sees the real committed count, and ticket reads
// must reflect status changes immediately.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler) {
	g := e.Group("/v1/tickets")

	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PUT("/:id/status", h.UpdateStatus)
	g.DELETE("/:id", h.Delete)
}
