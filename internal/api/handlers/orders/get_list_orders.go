package orders

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func GetListOrdersRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.GET("/:store/orders", getListOrdersHandler(s))
}

func getListOrdersHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		// 全部查询参数透传上游并参与缓存键
		query := make(map[string]string)
		for key, values := range c.QueryParams() {
			if len(values) > 0 {
				query[key] = values[0]
			}
		}

		raw, err := s.ProxyService.List(ctx, sess, c.Param("store"), "orders", query)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to list orders")
			return httperrors.FromGatewayError(err)
		}

		return c.JSONBlob(http.StatusOK, raw)
	}
}
