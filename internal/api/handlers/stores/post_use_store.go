package stores

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

func PostUseStoreRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.POST("/use", postUseStoreHandler(s))
}

func postUseStoreHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostUseStorePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		sess := middleware.SessionFromEchoContext(c)

		if err := s.Limiter.Require(ratelimit.ScopeTenant, sess.TenantID, ratelimit.CostRead); err != nil {
			return httperrors.FromGatewayError(err)
		}

		profile, err := s.StoreService.Use(ctx, sess, *body.Store)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to select store")
			return httperrors.FromGatewayError(err)
		}

		return util.ValidateAndReturn(c, http.StatusOK, toStoreProfileResponse(profile))
	}
}
