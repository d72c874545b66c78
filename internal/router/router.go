// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/event-ticketing/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers the routes that belong to no resource group.
// Currently it exposes only a health check, used by load balancers and
// monitoring systems to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
