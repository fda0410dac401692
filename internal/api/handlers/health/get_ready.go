package health

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/labstack/echo/v4"
)

func GetReadyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/ready", getReadyHandler(s))
}

// getReadyHandler only checks that all server components are initialized.
func getReadyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.String(http.StatusInternalServerError, "Not ready.")
		}

		return c.String(http.StatusOK, "Ready.")
	}
}
