package httperrors

import (
	"fmt"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
)

// HTTPError carries the public error payload plus internal context that is
// logged but never serialized to the caller.
type HTTPError struct {
	types.PublicHTTPError
	Internal       error                  `json:"-"`
	AdditionalData map[string]interface{} `json:"-"`
}

// NewHTTPError builds a plain HTTP error.
func NewHTTPError(code int, errorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.NewPublicHTTPError(code, errorType, title),
	}
}

// NewHTTPErrorWithDetail builds an HTTP error carrying structured detail.
func NewHTTPErrorWithDetail(code int, errorType, title, errorCode string, detail map[string]interface{}) *HTTPError {
	publicErr := types.NewPublicHTTPError(code, errorType, title)
	publicErr.ErrorCode = errorCode
	publicErr.Detail = detail
	return &HTTPError{PublicHTTPError: publicErr}
}

func (e *HTTPError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("HTTPError %d (%s): %s: %v", *e.Code, *e.Type, *e.Title, e.Internal)
	}
	return fmt.Sprintf("HTTPError %d (%s): %s", *e.Code, *e.Type, *e.Title)
}

// HTTPValidationError extends HTTPError with per-field validation details.
type HTTPValidationError struct {
	types.PublicHTTPValidationError
	Internal error `json:"-"`
}

// NewHTTPValidationError builds an HTTP error with field-level details.
func NewHTTPValidationError(code int, errorType, title string, validationErrors []*types.HTTPValidationErrorDetail) *HTTPValidationError {
	return &HTTPValidationError{
		PublicHTTPValidationError: types.PublicHTTPValidationError{
			PublicHTTPError:  types.NewPublicHTTPError(code, errorType, title),
			ValidationErrors: validationErrors,
		},
	}
}

func (e *HTTPValidationError) Error() string {
	return fmt.Sprintf("HTTPValidationError %d (%s): %s (%d fields)", *e.Code, *e.Type, *e.Title, len(e.ValidationErrors))
}
