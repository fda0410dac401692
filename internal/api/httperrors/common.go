package httperrors

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
)

var (
	ErrBadRequestMalformedJSON = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Request body is not valid JSON.")
	ErrUnauthorizedMissingKey  = NewHTTPError(http.StatusUnauthorized, types.PublicHTTPErrorTypeGeneric, "Authorization header with a bearer master key is required.")
)
