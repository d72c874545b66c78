package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/config"
)

func TestCacheKeyFrom(t *testing.T) {
	e := echo.New()

	// keyFor simulates a routed request: the concrete URL plus the route
	// pattern echo would have matched.
	keyFor := func(cfg config.CacheConfig, target, routePath string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(routePath)
		return cacheKeyFrom(cfg, c)
	}
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	t.Run("distinct resources on a parameterized route get distinct keys", func(t *testing.T) {
		k1 := keyFor(cfg, "/v1/performers/1", "/v1/performers/:id")
		k2 := keyFor(cfg, "/v1/performers/2", "/v1/performers/:id")
		require.NotEqual(t, k1, k2)
	})

	t.Run("repeated requests for the same resource share a key", func(t *testing.T) {
		k1 := keyFor(cfg, "/v1/performers/1/events", "/v1/performers/:id/events")
		k2 := keyFor(cfg, "/v1/performers/1/events", "/v1/performers/:id/events")
		require.Equal(t, k1, k2)
	})

	t.Run("query string contributes to the key by default", func(t *testing.T) {
		k1 := keyFor(cfg, "/v1/events?page=1", "/v1/events")
		k2 := keyFor(cfg, "/v1/events?page=2", "/v1/events")
		require.NotEqual(t, k1, k2)
	})

	t.Run("route strategy ignores the query string", func(t *testing.T) {
		routeCfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
		k1 := keyFor(routeCfg, "/v1/events?page=1", "/v1/events")
		k2 := keyFor(routeCfg, "/v1/events?page=2", "/v1/events")
		require.Equal(t, k1, k2)
	})
}
