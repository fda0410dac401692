package stores

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/store"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
)

func PostRegisterStoreRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Stores.POST("", postRegisterStoreHandler(s))
}

func postRegisterStoreHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostRegisterStorePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		sess := middleware.SessionFromEchoContext(c)

		// 注册是写操作
		if err := s.Limiter.Require(ratelimit.ScopeTenant, sess.TenantID, ratelimit.CostWrite); err != nil {
			return httperrors.FromGatewayError(err)
		}

		profile, err := s.StoreService.Register(ctx, sess, *body.StoreName, *body.StoreID, *body.APIKey, swag.StringValue(body.Label))
		if err != nil {
			log.Warn().Err(err).Msg("Failed to register store")
			return httperrors.FromGatewayError(err)
		}

		return util.ValidateAndReturn(c, http.StatusCreated, toStoreProfileResponse(profile))
	}
}

func toStoreProfileResponse(profile *store.Profile) *types.StoreProfileResponse {
	return &types.StoreProfileResponse{
		ID:        swag.String(profile.ID),
		StoreName: swag.String(profile.StoreName),
		StoreID:   swag.String(profile.ExternalStoreID),
		Label:     profile.Label,
		CreatedAt: strfmt.DateTime(profile.CreatedAt),
		UpdatedAt: strfmt.DateTime(profile.UpdatedAt),
	}
}
