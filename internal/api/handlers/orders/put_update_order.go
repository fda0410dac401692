package orders

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func PutUpdateOrderRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.PUT("/:store/orders/:id", putUpdateOrderHandler(s))
}

func putUpdateOrderHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		// 请求体就是变更集；合并语义由变更引擎执行
		changeset, err := bindJSONObject(c)
		if err != nil {
			return err
		}

		sess := middleware.SessionFromEchoContext(c)

		result, err := s.ProxyService.MutateOrder(ctx, sess, c.Param("store"), c.Param("id"), changeset)
		if err != nil {
			log.Warn().Err(err).Str("order_id", c.Param("id")).Msg("Failed to update order")
			return httperrors.FromGatewayError(err)
		}

		return c.JSON(http.StatusOK, result)
	}
}
