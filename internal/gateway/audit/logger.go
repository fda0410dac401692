package audit

import (
	"context"
	"encoding/json"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// 审计结果
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "denied"
)

// Logger 审计日志记录器
// 每条记录同时进结构化日志和持久化审计表；落库失败只告警，不让业务请求失败
type Logger struct {
	store storage.MetadataStore
}

// NewLogger 创建审计记录器
func NewLogger(store storage.MetadataStore) *Logger {
	return &Logger{store: store}
}

// Record 写入一条审计记录；details 先脱敏再落库
func (l *Logger) Record(ctx context.Context, tenantID, correlationID, action, resource, result string, details map[string]interface{}) {
	redacted := Redact(details)

	event := log.Ctx(ctx).Info()
	if result != ResultSuccess {
		event = log.Ctx(ctx).Warn()
	}
	event.
		Str("tenant_id", tenantID).
		Str("correlation_id", correlationID).
		Str("action", action).
		Str("resource", resource).
		Str("result", result).
		Interface("details", redacted).
		Msg("audit")

	payload, err := json.Marshal(redacted)
	if err != nil {
		payload = []byte("{}")
	}

	record := &storage.AuditRecord{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		CorrelationID: correlationID,
		Action:        action,
		Resource:      resource,
		Result:        result,
		Details:       payload,
	}
	if err := l.store.InsertAuditRecord(ctx, record); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", action).Msg("failed to persist audit record")
	}
}
