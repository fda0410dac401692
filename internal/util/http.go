package util

import (
	"net/http"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by all request and response payload types.
type Validatable interface {
	Validate(formats strfmt.Registry) error
}

// BindAndValidateBody binds the request body and runs payload validation.
// Validation failures surface as structured 400 responses.
func BindAndValidateBody(c echo.Context, v Validatable) error {
	if err := c.Bind(v); err != nil {
		return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "Failed to parse request body")
	}
	if err := v.Validate(strfmt.Default); err != nil {
		return httperrors.NewHTTPValidationError(
			http.StatusBadRequest,
			types.PublicHTTPErrorTypeGeneric,
			"Request validation failed",
			[]*types.HTTPValidationErrorDetail{
				{
					In:    swag.String("body"),
					Error: swag.String(err.Error()),
				},
			},
		)
	}
	return nil
}

// ValidateAndReturn validates the response payload before writing it.
// An invalid response is a server bug, never returned to the caller as-is.
func ValidateAndReturn(c echo.Context, code int, v Validatable) error {
	if err := v.Validate(strfmt.Default); err != nil {
		return httperrors.NewHTTPError(http.StatusInternalServerError, types.PublicHTTPErrorTypeGeneric, "Failed to validate response payload")
	}
	return c.JSON(code, v)
}
