package auth

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

func PostAuthenticateRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Auth.POST("", postAuthenticateHandler(s))
}

func postAuthenticateHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostAuthenticatePayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		// 登录作用域按客户端地址限流，先于任何 bcrypt 工作
		if err := s.Limiter.Require(ratelimit.ScopeLogin, c.RealIP(), ratelimit.CostRead); err != nil {
			return httperrors.FromGatewayError(err)
		}

		sess := middleware.SessionFromEchoContext(c)
		result, err := s.TenantService.Authenticate(ctx, sess, *body.MasterKey)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to authenticate tenant")
			return httperrors.FromGatewayError(err)
		}

		profiles, err := s.StoreService.List(ctx, sess)
		if err != nil {
			log.Error().Err(err).Msg("Failed to count stores after authentication")
			return httperrors.FromGatewayError(err)
		}

		response := &types.PostAuthenticateResponse{
			TenantID:         swag.String(result.TenantID),
			NewlyProvisioned: result.NewlyProvisioned,
			StoreCount:       int64(len(profiles)),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
