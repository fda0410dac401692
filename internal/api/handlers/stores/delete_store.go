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

func DeleteStoreRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.DELETE("/:store", deleteStoreHandler(s))
}

func deleteStoreHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		// 删除是写操作
		if err := s.Limiter.Require(ratelimit.ScopeTenant, sess.TenantID, ratelimit.CostWrite); err != nil {
			return httperrors.FromGatewayError(err)
		}

		if err := s.StoreService.Delete(ctx, sess, c.Param("store")); err != nil {
			log.Warn().Err(err).Msg("Failed to delete store")
			return httperrors.FromGatewayError(err)
		}

		// 店铺档案删除后，缓存中该店铺的条目一并失效
		if err := s.Cache.InvalidateTenant(ctx, sess.TenantID); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate cache after store deletion")
		}

		response := &types.GenericMessageResponse{
			Message: swag.String("store deleted"),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
