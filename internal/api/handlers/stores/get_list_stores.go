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

func GetListStoresRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.GET("", getListStoresHandler(s))
}

func getListStoresHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		if err := s.Limiter.Require(ratelimit.ScopeTenant, sess.TenantID, ratelimit.CostRead); err != nil {
			return httperrors.FromGatewayError(err)
		}

		profiles, err := s.StoreService.List(ctx, sess)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list stores")
			return httperrors.FromGatewayError(err)
		}

		items := make([]*types.StoreProfileResponse, 0, len(profiles))
		for _, profile := range profiles {
			items = append(items, toStoreProfileResponse(profile))
		}

		response := &types.GetListStoresResponse{
			Stores: items,
			Total:  int64(len(items)),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
