package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
)

// RegisterEvents registers event CRUD endpoints, the performer
// association endpoints, the status endpoint and per-event ticket
// listing under /v1. Browse caching is applied to the plain listings
// only: the single-event read carries a live committed count and the
// ticket listing reflects in-flight sales, so neither may be cached.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, browseCache ...echo.MiddlewareFunc) {
	g := e.Group("/v1/events")

	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PUT("/:id/status", h.UpdateStatus)

	g.PUT("/:id/performers", h.AddPerformers)
	g.DELETE("/:id/performers/:performer_id", h.RemovePerformer)

	g.GET("", h.List, browseCache...)
	g.GET("/:id", h.Get)
	g.GET("/:id/performers", h.ListPerformers, browseCache...)
	g.GET("/:id/tickets", h.ListTickets)
}
