package health

import (
	"net/http"
	"strings"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func GetHealthyRoute(s *api.Server) *echo.Route {
	return s.Router.Management.GET("/healthy", getHealthyHandler(s))
}

// getHealthyHandler probes the actual dependencies on top of the
// readiness check, currently only the database connection.
func getHealthyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var str strings.Builder

		if !s.Ready() {
			str.WriteString("Not ready.")
			return c.String(http.StatusInternalServerError, str.String())
		}

		str.WriteString("Ready.\n")

		if s.Config.Gateway.StorageBackend == "postgresql" && s.DB != nil {
			if err := s.DB.PingContext(ctx); err != nil {
				log.Error().Err(err).Msg("Database ping failed")
				str.WriteString("Database: unhealthy.")
				return c.String(http.StatusInternalServerError, str.String())
			}

			str.WriteString("Database: healthy.\n")
		}

		return c.String(http.StatusOK, str.String())
	}
}
