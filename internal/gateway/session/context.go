package session

import (
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/google/uuid"
)

// Context 单次调用的会话上下文
// 持有已认证租户、内存中的派生密钥、当前选中的店铺和关联 ID
// 每次调用单独构造，调用结束即丢弃；绝不在并发调用间共享，绝不序列化派生密钥
type Context struct {
	TenantID      string
	TenantKey     []byte // 派生密钥，仅存内存
	ActiveStoreID string
	CorrelationID string
}

// New 创建新的会话上下文并生成关联 ID
func New() *Context {
	return &Context{
		CorrelationID: uuid.New().String(),
	}
}

// SetTenant 认证成功后写入租户身份和派生密钥
func (c *Context) SetTenant(tenantID string, tenantKey []byte) {
	c.TenantID = tenantID
	c.TenantKey = tenantKey
}

// SetActiveStore 设置当前店铺，后续调用省略店铺参数时使用
func (c *Context) SetActiveStore(storeID string) {
	c.ActiveStoreID = storeID
}

// RequireAuth 所有下游操作的守卫；上下文未认证时闭合失败
func (c *Context) RequireAuth() (string, error) {
	if c == nil || c.TenantID == "" {
		return "", gwerrors.NewAuth("not authenticated: call authenticate first")
	}
	return c.TenantID, nil
}

// Authenticated 上下文是否已认证
func (c *Context) Authenticated() bool {
	return c != nil && c.TenantID != ""
}
