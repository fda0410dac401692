package proxy

import (
	"context"
	"encoding/json"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/audit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/cache"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/mutation"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/session"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/store"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/upstream"
	"github.com/rs/zerolog/log"
)

// 资源类别到上游路径的映射
var classPaths = map[string]string{
	"orders":    "/orders",
	"products":  "/inventory-items",
	"customers": "/customers",
	"store":     "/store",
}

// Service 上游资源代理
// 所有操作走同一条流水线：认证 → 限流 → 凭据解析 → 缓存/上游 → 失效
type Service interface {
	Get(ctx context.Context, sess *session.Context, storeIdent, class, resourceID string) (json.RawMessage, error)
	List(ctx context.Context, sess *session.Context, storeIdent, class string, query map[string]string) (json.RawMessage, error)
	Create(ctx context.Context, sess *session.Context, storeIdent, class string, payload map[string]interface{}) (json.RawMessage, error)
	Update(ctx context.Context, sess *session.Context, storeIdent, class, resourceID string, payload map[string]interface{}) (json.RawMessage, error)
	MutateOrder(ctx context.Context, sess *session.Context, storeIdent, orderID string, changeset map[string]interface{}) (map[string]interface{}, error)
	AddOrderNote(ctx context.Context, sess *session.Context, storeIdent, orderID, note string) (map[string]interface{}, error)
	Delete(ctx context.Context, sess *session.Context, storeIdent, class, resourceID string) error
}

type service struct {
	stores   store.Service
	limiter  *ratelimit.Limiter
	cache    *cache.Manager
	upstream upstream.Client
	engine   mutation.Engine
	audit    *audit.Logger
}

// NewService 创建资源代理服务
//
//nolint:ireturn
func NewService(
	stores store.Service,
	limiter *ratelimit.Limiter,
	cacheManager *cache.Manager,
	client upstream.Client,
	engine mutation.Engine,
	auditLogger *audit.Logger,
) Service {
	return &service{
		stores:   stores,
		limiter:  limiter,
		cache:    cacheManager,
		upstream: client,
		engine:   engine,
		audit:    auditLogger,
	}
}

// Get 读取单个资源，读穿缓存
func (s *service) Get(ctx context.Context, sess *session.Context, storeIdent, class, resourceID string) (json.RawMessage, error) {
	creds, storeID, err := s.admitRead(ctx, sess, storeIdent, class)
	if err != nil {
		return nil, err
	}

	key := cache.Key{
		TenantID:      sess.TenantID,
		StoreID:       storeID,
		ResourceClass: class,
		Query:         map[string]string{"id": resourceID},
	}
	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return s.upstream.Get(ctx, creds, resourcePath(class, resourceID), nil)
	})
}

// List 列出资源，查询参数参与缓存键
func (s *service) List(ctx context.Context, sess *session.Context, storeIdent, class string, query map[string]string) (json.RawMessage, error) {
	creds, storeID, err := s.admitRead(ctx, sess, storeIdent, class)
	if err != nil {
		return nil, err
	}

	key := cache.Key{
		TenantID:      sess.TenantID,
		StoreID:       storeID,
		ResourceClass: class,
		Query:         query,
	}
	return s.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return s.upstream.Get(ctx, creds, classPaths[class], query)
	})
}

// Create 创建资源；成功后失效该类别缓存
func (s *service) Create(ctx context.Context, sess *session.Context, storeIdent, class string, payload map[string]interface{}) (json.RawMessage, error) {
	creds, storeID, err := s.admitWrite(ctx, sess, storeIdent, class)
	if err != nil {
		return nil, err
	}

	raw, err := s.upstream.Post(ctx, creds, classPaths[class], payload)
	if err != nil {
		s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, class+".create", storeID, audit.ResultFailure, nil)
		return nil, err
	}

	s.invalidate(ctx, sess.TenantID, storeID, class)
	s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, class+".create", storeID, audit.ResultSuccess, nil)
	return raw, nil
}

// Update 全量更新资源（不做合并；订单的合并式变更走 MutateOrder）
func (s *service) Update(ctx context.Context, sess *session.Context, storeIdent, class, resourceID string, payload map[string]interface{}) (json.RawMessage, error) {
	creds, storeID, err := s.admitWrite(ctx, sess, storeIdent, class)
	if err != nil {
		return nil, err
	}

	raw, err := s.upstream.Put(ctx, creds, resourcePath(class, resourceID), payload)
	if err != nil {
		s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, class+".update", resourceID, audit.ResultFailure, nil)
		return nil, err
	}

	s.invalidate(ctx, sess.TenantID, storeID, class)
	s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, class+".update", resourceID, audit.ResultSuccess, nil)
	return raw, nil
}

// MutateOrder 合并式订单变更，冲突重试由变更引擎处理
func (s *service) MutateOrder(ctx context.Context, sess *session.Context, storeIdent, orderID string, changeset map[string]interface{}) (map[string]interface{}, error) {
	if len(changeset) == 0 {
		return nil, gwerrors.NewValidation("changeset must not be empty", []string{"changeset"}, nil, nil)
	}

	creds, storeID, err := s.admitWrite(ctx, sess, storeIdent, "orders")
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Apply(ctx, creds, orderID, changeset)
	if err != nil {
		s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, "orders.mutate", orderID, audit.ResultFailure, map[string]interface{}{
			"error_code": string(gwerrors.CodeOf(err)),
		})
		return nil, err
	}

	s.invalidate(ctx, sess.TenantID, storeID, "orders")
	s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, "orders.mutate", orderID, audit.ResultSuccess, nil)
	return result, nil
}

// AddOrderNote 追加订单备注；空备注拒绝，重复备注由合并层静默去重
func (s *service) AddOrderNote(ctx context.Context, sess *session.Context, storeIdent, orderID, note string) (map[string]interface{}, error) {
	if note == "" {
		return nil, gwerrors.NewValidation("note must not be empty", []string{"note"}, nil, nil)
	}
	return s.MutateOrder(ctx, sess, storeIdent, orderID, map[string]interface{}{
		"notes": []interface{}{note},
	})
}

// Delete 删除资源；成功后失效该类别缓存
func (s *service) Delete(ctx context.Context, sess *session.Context, storeIdent, class, resourceID string) error {
	creds, storeID, err := s.admitWrite(ctx, sess, storeIdent, class)
	if err != nil {
		return err
	}

	if _, err := s.upstream.Delete(ctx, creds, resourcePath(class, resourceID)); err != nil {
		s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, class+".delete", resourceID, audit.ResultFailure, nil)
		return err
	}

	s.invalidate(ctx, sess.TenantID, storeID, class)
	s.audit.Record(ctx, sess.TenantID, sess.CorrelationID, class+".delete", resourceID, audit.ResultSuccess, nil)
	return nil
}

// admitRead 读操作的前置流水线：认证 → 限流(1) → 凭据
func (s *service) admitRead(ctx context.Context, sess *session.Context, storeIdent, class string) (upstream.Credentials, string, error) {
	return s.admit(ctx, sess, storeIdent, class, ratelimit.CostRead)
}

// admitWrite 写操作的前置流水线：认证 → 限流(2) → 凭据
func (s *service) admitWrite(ctx context.Context, sess *session.Context, storeIdent, class string) (upstream.Credentials, string, error) {
	return s.admit(ctx, sess, storeIdent, class, ratelimit.CostWrite)
}

func (s *service) admit(ctx context.Context, sess *session.Context, storeIdent, class string, cost int) (upstream.Credentials, string, error) {
	tenantID, err := sess.RequireAuth()
	if err != nil {
		return upstream.Credentials{}, "", err
	}

	if _, ok := classPaths[class]; !ok {
		return upstream.Credentials{}, "", gwerrors.NewValidation(
			"unknown resource class: "+class, nil,
			map[string]string{"class": "must be one of orders, products, customers, store"}, nil)
	}

	if err := s.limiter.Require(ratelimit.ScopeTenant, tenantID, cost); err != nil {
		s.audit.Record(ctx, tenantID, sess.CorrelationID, class+".admit", storeIdent, audit.ResultDenied, nil)
		return upstream.Credentials{}, "", err
	}

	creds, storeID, err := s.stores.Credentials(ctx, sess, storeIdent)
	if err != nil {
		return upstream.Credentials{}, "", err
	}
	return creds, storeID, nil
}

// invalidate 写后失效；失效失败只告警，不影响写结果
func (s *service) invalidate(ctx context.Context, tenantID, storeID, class string) {
	if err := s.cache.Invalidate(ctx, tenantID, storeID, class); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("resource_class", class).Msg("cache invalidation failed after write")
	}
}

func resourcePath(class, resourceID string) string {
	return classPaths[class] + "/" + resourceID
}
