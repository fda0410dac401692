package auditlogs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/httperrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/middleware"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/types"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/util"
	"github.com/go-openapi/strfmt"
	"github.com/labstack/echo/v4"
)

const defaultAuditLogLimit = 100

func GetAuditLogsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1Audit.GET("", getAuditLogsHandler(s))
}

func getAuditLogsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		sess := middleware.SessionFromEchoContext(c)

		// 审计查询走控制台作用域，与业务代理配额互不挤占
		if err := s.Limiter.Require(ratelimit.ScopeConsole, sess.TenantID, ratelimit.CostRead); err != nil {
			return httperrors.FromGatewayError(err)
		}

		limit := defaultAuditLogLimit
		if raw := c.QueryParam("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				return httperrors.NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypeGeneric, "limit must be a positive integer")
			}
			limit = parsed
		}

		records, err := s.MetadataStore.ListAuditRecords(ctx, sess.TenantID, limit)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list audit records")
			return httperrors.FromGatewayError(err)
		}

		events := make([]*types.AuditLogItem, 0, len(records))
		for _, record := range records {
			item := &types.AuditLogItem{
				ID:            record.ID,
				Action:        record.Action,
				Resource:      record.Resource,
				Result:        record.Result,
				CorrelationID: record.CorrelationID,
				Timestamp:     strfmt.DateTime(record.CreatedAt),
			}

			if len(record.Details) > 0 {
				// 入库前已脱敏，这里只做反序列化
				if err := json.Unmarshal(record.Details, &item.Details); err != nil {
					log.Warn().Err(err).Str("audit_id", record.ID).Msg("Failed to decode audit details")
				}
			}

			events = append(events, item)
		}

		response := &types.GetAuditLogsResponse{
			Events: events,
			Total:  len(events),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
