package middleware

import (
	"strings"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/labstack/echo/v4"
)

// TenantAuth 认证中间件：从 Authorization bearer 中取主密钥并认证租户
// 主密钥即身份，没有单独的用户名；每个请求独立认证，服务端不保存会话
func TenantAuth(s *api.Server) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			log := util.LogFromContext(ctx)

			masterKey := bearerToken(c)
			if masterKey == "" {
				return httperrors.ErrUnauthorizedMissingKey
			}

			// 登录作用域按客户端地址限流，先于任何 bcrypt 工作
			if err := s.Limiter.Require(ratelimit.ScopeLogin, c.RealIP(), ratelimit.CostRead); err != nil {
				return httperrors.FromGatewayError(err)
			}

			sess := SessionFromEchoContext(c)
			result, err := s.TenantService.Authenticate(ctx, sess, masterKey)
			if err != nil {
				log.Warn().Err(err).Msg("tenant authentication failed")
				return httperrors.FromGatewayError(err)
			}

			logger := log.With().Str("tenant_id", result.TenantID).Logger()
			c.SetRequest(c.Request().WithContext(logger.WithContext(ctx)))

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
