package router

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Init 构造 echo 实例、路由分组和全部路由
func Init(s *api.Server) {
	s.Echo = echo.New()
	s.Echo.Debug = false
	s.Echo.HideBanner = true
	s.Echo.HTTPErrorHandler = errorHandler(s.Config.Echo.HideInternalServerErrorDetails)

	s.Echo.Use(echoMiddleware.Recover())
	s.Echo.Use(middleware.RequestLogger())

	s.Router = &api.Router{
		Root:         s.Echo.Group(""),
		Management:   s.Echo.Group("/-"),
		APIV1Auth:    s.Echo.Group("/api/v1/auth"),
		APIV1Tenants: s.Echo.Group("/api/v1/tenants"),
		APIV1Stores:  s.Echo.Group("/api/v1/stores", middleware.TenantAuth(s)),
		APIV1Audit:   s.Echo.Group("/api/v1/audit-logs", middleware.TenantAuth(s)),
	}

	s.Router.Routes = handlers.AttachAllRoutes(s)
}

// errorHandler 统一的错误渲染
// 已映射的 HTTP 错误按载荷输出；裸领域错误兜底映射；其余按 500 处理
func errorHandler(hideInternal bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var code int
		var payload interface{}

		var validationErr *httperrors.HTTPValidationError
		var httpErr *httperrors.HTTPError
		var gwErr *gwerrors.Error
		var echoErr *echo.HTTPError

		switch {
		case errors.As(err, &validationErr):
			code = int(*validationErr.Code)
			payload = validationErr
		case errors.As(err, &httpErr):
			code = int(*httpErr.Code)
			payload = httpErr
		case errors.As(err, &gwErr):
			mapped := httperrors.FromGatewayError(err)
			code = int(*mapped.Code)
			payload = mapped
		case errors.As(err, &echoErr):
			code = echoErr.Code
			title := http.StatusText(code)
			if msg, ok := echoErr.Message.(string); ok && !hideInternal {
				title = msg
			}
			mapped := httperrors.NewHTTPError(code, types.PublicHTTPErrorTypeGeneric, title)
			payload = mapped
		default:
			log.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
			code = http.StatusInternalServerError
			title := "Internal server error"
			if !hideInternal {
				title = err.Error()
			}
			payload = httperrors.NewHTTPError(code, types.PublicHTTPErrorTypeGeneric, title)
		}

		if c.Request().Method == http.MethodHead {
			if err := c.NoContent(code); err != nil {
				log.Ctx(c.Request().Context()).Error().Err(err).Msg("failed to write error response")
			}
			return
		}

		if err := c.JSON(code, payload); err != nil {
			log.Ctx(c.Request().Context()).Error().Err(err).Msg("failed to write error response")
		}
	}
}
