package stores

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
)

func PostTestStoreRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.POST("/:store/test", postTestStoreHandler(s))
}

func postTestStoreHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		if err := s.Limiter.Require(ratelimit.ScopeTenant, sess.TenantID, ratelimit.CostRead); err != nil {
			return httperrors.FromGatewayError(err)
		}

		if err := s.StoreService.Test(ctx, sess, c.Param("store")); err != nil {
			log.Warn().Err(err).Msg("Store credential test failed")
			return httperrors.FromGatewayError(err)
		}

		response := &types.GenericMessageResponse{
			Message: swag.String("store credentials verified"),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
