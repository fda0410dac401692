package types

import (
	"github.com/go-openapi/strfmt"
	"github.com/pkg/errors"
)

// PostAddNotePayload 追加订单备注请求
type PostAddNotePayload struct {
	// Required: true
	Note *string `json:"note"`
}

// Validate validates this post add note payload
func (m *PostAddNotePayload) Validate(_ strfmt.Registry) error {
	if m.Note == nil || *m.Note == "" {
		return errors.New("note is required")
	}
	return nil
}
