package httperrors

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/pkg/errors"
)

// 网关错误代码到 HTTP 状态码的映射
var statusByCode = map[gwerrors.Code]int{
	gwerrors.CodeValidation: http.StatusBadRequest,
	gwerrors.CodeAuth:       http.StatusUnauthorized,
	gwerrors.CodeNotFound:   http.StatusNotFound,
	gwerrors.CodeConflict:   http.StatusConflict,
	gwerrors.CodeRateLimit:  http.StatusTooManyRequests,
	gwerrors.CodeIntegrity:  http.StatusInternalServerError,
	gwerrors.CodeUpstream:   http.StatusBadGateway,
}

// FromGatewayError 把领域错误翻译成对外 HTTP 错误
// 内部细节（cause 链）只进日志，消息和结构化详情原样透出
func FromGatewayError(err error) *HTTPError {
	var gwErr *gwerrors.Error
	if !errors.As(err, &gwErr) {
		httpErr := NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, "Internal server error")
		httpErr.Internal = err
		return httpErr
	}

	status, ok := statusByCode[gwErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	httpErr := NewHTTPErrorWithDetail(status, types.PublicHTTPErrorTypeGeneric, gwErr.Message, string(gwErr.Code), gwErr.Details)
	httpErr.Internal = errors.Cause(err)
	return httpErr
}
