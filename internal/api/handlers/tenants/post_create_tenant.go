package tenants

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
)

func PostCreateTenantRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Tenants.POST("", postCreateTenantHandler(s))
}

func postCreateTenantHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		var body types.PostCreateTenantPayload
		if err := util.BindAndValidateBody(c, &body); err != nil {
			return err
		}

		// 开通作用域限流最严，防止批量注册
		if err := s.Limiter.Require(ratelimit.ScopeSignup, c.RealIP(), ratelimit.CostRead); err != nil {
			return httperrors.FromGatewayError(err)
		}

		result, err := s.TenantService.Create(ctx, body.MasterKey)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create tenant")
			return httperrors.FromGatewayError(err)
		}

		// 生成的主密钥只在这个响应里出现一次
		response := &types.PostCreateTenantResponse{
			TenantID:  swag.String(result.TenantID),
			MasterKey: result.MasterKey,
		}

		return util.ValidateAndReturn(c, http.StatusCreated, response)
	}
}
