package types

import (
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
)

// Public error type identifiers.
const (
	PublicHTTPErrorTypeGeneric = "generic"
)

// PublicHTTPError is the wire representation of a failed request.
type PublicHTTPError struct {
	// HTTP status code
	// Required: true
	Code *int64 `json:"status"`
	// Machine readable error type
	// Required: true
	Type *string `json:"type"`
	// Human readable error title
	// Required: true
	Title *string `json:"title"`
	// Machine readable gateway error code
	ErrorCode string `json:"code,omitempty"`
	// Structured error details
	Detail map[string]interface{} `json:"detail,omitempty"`
}

// Validate validates this public HTTP error
func (m *PublicHTTPError) Validate(_ strfmt.Registry) error {
	if m.Code == nil {
		return errors.New("status is required")
	}
	if m.Type == nil {
		return errors.New("type is required")
	}
	if m.Title == nil {
		return errors.New("title is required")
	}
	return nil
}

// HTTPValidationErrorDetail describes a single invalid field.
type HTTPValidationErrorDetail struct {
	// Name of the field
	Key *string `json:"key,omitempty"`
	// Location of the field (body, query, path)
	In *string `json:"in,omitempty"`
	// What is wrong with it
	Error *string `json:"error,omitempty"`
}

// PublicHTTPValidationError extends PublicHTTPError with per-field details.
type PublicHTTPValidationError struct {
	PublicHTTPError
	ValidationErrors []*HTTPValidationErrorDetail `json:"validationErrors,omitempty"`
}

// Validate validates this public HTTP validation error
func (m *PublicHTTPValidationError) Validate(formats strfmt.Registry) error {
	return m.PublicHTTPError.Validate(formats)
}

// NewPublicHTTPError builds the wire error payload.
func NewPublicHTTPError(code int, errorType, title string) PublicHTTPError {
	return PublicHTTPError{
		Code:  swag.Int64(int64(code)),
		Type:  swag.String(errorType),
		Title: swag.String(title),
	}
}
