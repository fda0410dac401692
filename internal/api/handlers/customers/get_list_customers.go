package customers

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func GetListCustomersRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.GET("/:store/customers", getListCustomersHandler(s))
}

func getListCustomersHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		query := make(map[string]string)
		for key, values := range c.QueryParams() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		raw, err := s.ProxyService.List(ctx, sess, c.Param("store"), "customers", query)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to list customers")
			return httperrors.FromGatewayError(err)
		}

		return c.JSONBlob(http.StatusOK, raw)
	}
}
