package orders

import (
	"encoding/json"
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func PostCreateOrderRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.POST("/:store/orders", postCreateOrderHandler(s))
}

func postCreateOrderHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		payload, err := bindJSONObject(c)
		if err != nil {
			return err
		}

		sess := middleware.SessionFromEchoContext(c)

		raw, err := s.ProxyService.Create(ctx, sess, c.Param("store"), "orders", payload)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to create order")
			return httperrors.FromGatewayError(err)
		}

		return c.JSONBlob(http.StatusCreated, raw)
	}
}

// bindJSONObject 读取任意 JSON 对象请求体；订单载荷对上游透传，不做模式校验
func bindJSONObject(c echo.Context) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return nil, httperrors.ErrBadRequestMalformedJSON
	}
	return payload, nil
}
