package orders

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func PostAddNoteRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.POST("/:store/orders/:id/notes", postAddNoteHandler(s))
}

func postAddNoteHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostAddNotePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		sess := middleware.SessionFromEchoContext(c)

		// 重复备注由合并层静默去重，重复调用幂等
		result, err := s.ProxyService.AddOrderNote(ctx, sess, c.Param("store"), c.Param("id"), *body.Note)
		if err != nil {
			log.Warn().Err(err).Str("order_id", c.Param("id")).Msg("Failed to add order note")
			return httperrors.FromGatewayError(err)
		}

		return c.JSON(http.StatusOK, result)
	}
}
