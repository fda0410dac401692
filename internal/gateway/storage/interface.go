package storage

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound 行不存在；由服务层翻译为领域错误
var ErrNotFound = errors.New("storage: row not found")

// ErrDuplicate 唯一约束冲突
var ErrDuplicate = errors.New("storage: duplicate row")

// MetadataStore 网关元数据的持久化接口
// 实现必须保证 (tenant_id, store_name) 和 (tenant_id, external_store_id) 各自唯一
type MetadataStore interface {
	CreateTenant(ctx context.Context, tenant *Tenant) error
	ListTenants(ctx context.Context) ([]*Tenant, error)
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	TouchTenant(ctx context.Context, id string) error
	DeleteTenant(ctx context.Context, id string) error

	CreateStore(ctx context.Context, store *Store) error
	ListStores(ctx context.Context, tenantID string) ([]*Store, error)
	GetStore(ctx context.Context, tenantID, id string) (*Store, error)
	DeleteStore(ctx context.Context, tenantID, id string) error

	InsertAuditRecord(ctx context.Context, record *AuditRecord) error
	ListAuditRecords(ctx context.Context, tenantID string, limit int) ([]*AuditRecord, error)
}
