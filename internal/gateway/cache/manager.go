package cache

import (
	"context"
	"crypto/md5" //nolint:gosec // cache key signature, not a security boundary
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// 资源类别 TTL；上游数据变化越快 TTL 越短
const (
	TTLOrders    = 15 * time.Second
	TTLProducts  = 60 * time.Second
	TTLCustomers = 300 * time.Second
	TTLStore     = 3600 * time.Second
	TTLDefault   = 300 * time.Second
)

// Key 缓存条目的逻辑坐标
// 序列化为 "tenant:store:class:querysig"，保证前缀失效可按租户或店铺粒度命中
type Key struct {
	TenantID      string
	StoreID       string
	ResourceClass string
	Query         map[string]string
}

// String 生成后端键
func (k Key) String() string {
	return strings.Join([]string{k.TenantID, k.StoreID, k.ResourceClass, querySignature(k.Query)}, ":")
}

// querySignature 查询参数的稳定短签名
// 键排序后序列化取 md5 前 8 个十六进制字符；空查询固定为 "default"
func querySignature(query map[string]string) string {
	if len(query) == 0 {
		return "default"
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([][2]string, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, [2]string{k, query[k]})
	}

	raw, err := json.Marshal(ordered)
	if err != nil {
		// map[string]string 序列化不会失败；防御分支
		return "default"
	}

	sum := md5.Sum(raw) //nolint:gosec // cache key signature, not a security boundary
	return hex.EncodeToString(sum[:])[:8]
}

// TTLFor 按资源类别返回 TTL
func TTLFor(resourceClass string) time.Duration {
	switch resourceClass {
	case "orders", "order":
		return TTLOrders
	case "products", "product", "inventory":
		return TTLProducts
	case "customers", "customer":
		return TTLCustomers
	case "store":
		return TTLStore
	default:
		return TTLDefault
	}
}

// FetchFunc 缓存未命中时的取数回调
type FetchFunc func(ctx context.Context) ([]byte, error)

// Manager 读穿缓存管理器
// 后端读失败按未命中降级，后端写失败只记日志；缓存故障绝不让请求失败
type Manager struct {
	backend Backend
}

// NewManager 创建缓存管理器
func NewManager(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// GetOrFetch 读穿：命中直接返回，否则取数并按类别 TTL 写回
func (m *Manager) GetOrFetch(ctx context.Context, key Key, fetch FetchFunc) ([]byte, error) {
	backendKey := key.String()

	value, ok, err := m.backend.Get(ctx, backendKey)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("cache_key", backendKey).Msg("cache read failed, treating as miss")
	} else if ok {
		return value, nil
	}

	fetched, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := m.backend.Set(ctx, backendKey, fetched, TTLFor(key.ResourceClass)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("cache_key", backendKey).Msg("cache write failed")
	}
	return fetched, nil
}

// Invalidate 失效某店铺下某资源类别的全部条目
func (m *Manager) Invalidate(ctx context.Context, tenantID, storeID, resourceClass string) error {
	prefix := strings.Join([]string{tenantID, storeID, resourceClass}, ":") + ":"
	return m.backend.InvalidatePrefix(ctx, prefix)
}

// InvalidateStore 失效某店铺的全部条目
func (m *Manager) InvalidateStore(ctx context.Context, tenantID, storeID string) error {
	prefix := strings.Join([]string{tenantID, storeID}, ":") + ":"
	return m.backend.InvalidatePrefix(ctx, prefix)
}

// InvalidateTenant 失效某租户的全部条目
func (m *Manager) InvalidateTenant(ctx context.Context, tenantID string) error {
	return m.backend.InvalidatePrefix(ctx, tenantID+":")
}
