package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/dropbox/godropbox/time2"
)

// memoryStore 进程内元数据存储；测试和单机部署用
// 与 PostgreSQL 实现执行相同的唯一性约束
type memoryStore struct {
	mu      sync.RWMutex
	clock   time2.Clock
	tenants map[string]*Tenant
	stores  map[string]*Store
	audit   []*AuditRecord
}

// NewMemoryStore 创建进程内元数据存储
//
//nolint:ireturn
func NewMemoryStore(clock time2.Clock) MetadataStore {
	return &memoryStore{
		clock:   clock,
		tenants: make(map[string]*Tenant),
		stores:  make(map[string]*Store),
	}
}

func (s *memoryStore) CreateTenant(_ context.Context, tenant *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[tenant.ID]; exists {
		return ErrDuplicate
	}

	now := s.clock.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	tenant.LastUsedAt = now

	copied := *tenant
	s.tenants[tenant.ID] = &copied
	return nil
}

func (s *memoryStore) ListTenants(_ context.Context) ([]*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenants := make([]*Tenant, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		copied := *tenant
		tenants = append(tenants, &copied)
	}
	sort.Slice(tenants, func(i, j int) bool {
		return tenants[i].CreatedAt.Before(tenants[j].CreatedAt)
	})
	return tenants, nil
}

func (s *memoryStore) GetTenant(_ context.Context, id string) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *tenant
	return &copied, nil
}

func (s *memoryStore) TouchTenant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[id]
	if !ok {
		return ErrNotFound
	}
	tenant.LastUsedAt = s.clock.Now()
	return nil
}

func (s *memoryStore) DeleteTenant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[id]; !ok {
		return ErrNotFound
	}
	delete(s.tenants, id)
	// 级联删除店铺
	for storeID, store := range s.stores {
		if store.TenantID == id {
			delete(s.stores, storeID)
		}
	}
	return nil
}

func (s *memoryStore) CreateStore(_ context.Context, store *Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stores[store.ID]; exists {
		return ErrDuplicate
	}
	for _, existing := range s.stores {
		if existing.TenantID != store.TenantID {
			continue
		}
		if existing.StoreName == store.StoreName || existing.ExternalStoreID == store.ExternalStoreID {
			return ErrDuplicate
		}
	}

	now := s.clock.Now()
	store.CreatedAt = now
	store.UpdatedAt = now

	copied := *store
	s.stores[store.ID] = &copied
	return nil
}

func (s *memoryStore) ListStores(_ context.Context, tenantID string) ([]*Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stores := make([]*Store, 0)
	for _, store := range s.stores {
		if store.TenantID != tenantID {
			continue
		}
		copied := *store
		stores = append(stores, &copied)
	}
	sort.Slice(stores, func(i, j int) bool {
		return stores[i].CreatedAt.Before(stores[j].CreatedAt)
	})
	return stores, nil
}

func (s *memoryStore) GetStore(_ context.Context, tenantID, id string) (*Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	store, ok := s.stores[id]
	if !ok || store.TenantID != tenantID {
		return nil, ErrNotFound
	}
	copied := *store
	return &copied, nil
}

func (s *memoryStore) DeleteStore(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.stores[id]
	if !ok || store.TenantID != tenantID {
		return ErrNotFound
	}
	delete(s.stores, id)
	return nil
}

func (s *memoryStore) InsertAuditRecord(_ context.Context, record *AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.CreatedAt = s.clock.Now()
	copied := *record
	s.audit = append(s.audit, &copied)
	return nil
}

func (s *memoryStore) ListAuditRecords(_ context.Context, tenantID string, limit int) ([]*AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*AuditRecord, 0)
	for i := len(s.audit) - 1; i >= 0 && len(records) < limit; i-- {
		if s.audit[i].TenantID != tenantID {
			continue
		}
		copied := *s.audit[i]
		records = append(records, &copied)
	}
	return records, nil
}
