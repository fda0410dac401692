package orders

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func GetOrderRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.GET("/:store/orders/:id", getOrderHandler(s))
}

func getOrderHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		raw, err := s.ProxyService.Get(ctx, sess, c.Param("store"), "orders", c.Param("id"))
		if err != nil {
			log.Warn().Err(err).Str("order_id", c.Param("id")).Msg("Failed to get order")
			return httperrors.FromGatewayError(err)
		}

		// 上游载荷原样透传
		return c.JSONBlob(http.StatusOK, raw)
	}
}
