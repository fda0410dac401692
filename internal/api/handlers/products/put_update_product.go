package products

import (
	"encoding/json"
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func PutUpdateProductRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.PUT("/:store/products/:id", putUpdateProductHandler(s))
}

func putUpdateProductHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var payload map[string]interface{}
		if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
			return httperrors.ErrBadRequestMalformedJSON
		}

		sess := middleware.SessionFromEchoContext(c)

		// 商品更新对上游直写，无合并语义
		raw, err := s.ProxyService.Update(ctx, sess, c.Param("store"), "products", c.Param("id"), payload)
		if err != nil {
			log.Warn().Err(err).Str("product_id", c.Param("id")).Msg("Failed to update product")
			return httperrors.FromGatewayError(err)
		}

		return c.JSONBlob(http.StatusOK, raw)
	}
}
