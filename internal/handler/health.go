package handler // handler defines http handlers

import (
	"net/http" // http defines status codes

	"github.com/labstack/echo/v4"
)

// Health responds with a simple liveness probe body.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
