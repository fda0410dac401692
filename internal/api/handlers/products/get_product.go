package products

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func GetProductRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.GET("/:store/products/:id", getProductHandler(s))
}

func getProductHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		raw, err := s.ProxyService.Get(ctx, sess, c.Param("store"), "products", c.Param("id"))
		if err != nil {
			log.Warn().Err(err).Str("product_id", c.Param("id")).Msg("Failed to get product")
			return httperrors.FromGatewayError(err)
		}

		return c.JSONBlob(http.StatusOK, raw)
	}
}
