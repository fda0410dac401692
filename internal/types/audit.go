package types

import (
	"github.com/go-openapi/strfmt"
)

// AuditLogItem 单条审计事件；Details 已脱敏
type AuditLogItem struct {
	ID            string                 `json:"id"`
	Action        string                 `json:"action"`
	Resource      string                 `json:"resource"`
	Result        string                 `json:"result"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	Timestamp     strfmt.DateTime        `json:"timestamp"`
}

// Validate validates this audit log item
func (m *AuditLogItem) Validate(_ strfmt.Registry) error {
	return nil
}

// GetAuditLogsResponse 审计事件列表，按时间倒序
type GetAuditLogsResponse struct {
	Events []*AuditLogItem `json:"events"`
	Total  int             `json:"total"`
}

// Validate validates this get audit logs response
func (m *GetAuditLogsResponse) Validate(_ strfmt.Registry) error {
	return nil
}
