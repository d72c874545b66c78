package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/handler"
)

// RegisterPerformers registers performer CRUD endpoints and the listing
// of a performer's events under /v1. The optional browseCache
// middleware (may be empty) is applied to the read-only endpoints so
// repeated listings can be served from Redis.
func RegisterPerformers(e *echo.Echo, h *handler.PerformerHandler, browseCache ...echo.MiddlewareFunc) {
	g := e.Group("/v1/performers")

	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	g.GET("", h.List, browseCache...)
	g.GET("/:id", h.Get, browseCache...)
	g.GET("/:id/events", h.ListEvents, browseCache...)
}
