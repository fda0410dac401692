package orders

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
)

func DeleteOrderRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.DELETE("/:store/orders/:id", deleteOrderHandler(s))
}

func deleteOrderHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		if err := s.ProxyService.Delete(ctx, sess, c.Param("store"), "orders", c.Param("id")); err != nil {
			log.Warn().Err(err).Str("order_id", c.Param("id")).Msg("Failed to delete order")
			return httperrors.FromGatewayError(err)
		}

		response := &types.GenericMessageResponse{
			Message: swag.String("order deleted"),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
