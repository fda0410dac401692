package middleware

import (
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	// SessionContextKey echo 上下文中会话对象的键
	SessionContextKey = "gateway_session"

	headerCorrelationID = "X-Correlation-ID"
)

// RequestLogger 为每个请求构造会话上下文和带关联 ID 的请求日志器
// 客户端给出的关联 ID 原样采用，否则生成新的
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := session.New()
			if id := c.Request().Header.Get(headerCorrelationID); id != "" {
				sess.CorrelationID = id
			}
			c.Set(SessionContextKey, sess)
			c.Response().Header().Set(headerCorrelationID, sess.CorrelationID)

			logger := log.With().
				Str("correlation_id", sess.CorrelationID).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Logger()

			ctx := logger.WithContext(c.Request().Context())
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)

			event := logger.Info()
			if err != nil || c.Response().Status >= 500 {
				event = logger.Warn().Err(err)
			}
			event.Int("status", c.Response().Status).Msg("request")

			return err
		}
	}
}

// SessionFromEchoContext 取出请求的会话上下文；中间件未挂载时返回新会话
func SessionFromEchoContext(c echo.Context) *session.Context {
	if sess, ok := c.Get(SessionContextKey).(*session.Context); ok {
		return sess
	}
	return session.New()
}
