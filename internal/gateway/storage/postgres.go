package storage

import (
	"context"
	"database/sql"

	"github.com/dropbox/godropbox/time2"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const pqUniqueViolation = "23505"

// Schema 元数据表结构
const Schema = `
CREATE TABLE IF NOT EXISTS tenants (
	id TEXT PRIMARY KEY,
	master_key_hash TEXT NOT NULL,
	kdf_salt TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	last_used_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS stores (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL REFERENCES tenants (id) ON DELETE CASCADE,
	store_name TEXT NOT NULL,
	external_store_id TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	api_key_ciphertext TEXT NOT NULL,
	api_key_tag TEXT NOT NULL,
	api_key_nonce TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (tenant_id, store_name),
	UNIQUE (tenant_id, external_store_id)
);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	correlation_id TEXT NOT NULL,
	action TEXT NOT NULL,
	resource TEXT NOT NULL,
	result TEXT NOT NULL,
	details JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_tenant ON audit_log (tenant_id, created_at DESC);`

// postgresStore 基于 PostgreSQL 的元数据存储
type postgresStore struct {
	db    *sqlx.DB
	clock time2.Clock
}

// NewPostgresStore 创建 PostgreSQL 元数据存储并确保表结构存在
//
//nolint:ireturn
func NewPostgresStore(db *sqlx.DB, clock time2.Clock) (MetadataStore, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, errors.Wrap(err, "failed to initialize metadata schema")
	}
	return &postgresStore{db: db, clock: clock}, nil
}

func (s *postgresStore) CreateTenant(ctx context.Context, tenant *Tenant) error {
	now := s.clock.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	tenant.LastUsedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO tenants (id, master_key_hash, kdf_salt, created_at, updated_at, last_used_at)
		VALUES (:id, :master_key_hash, :kdf_salt, :created_at, :updated_at, :last_used_at)`,
		tenant)
	return translateError(err, "failed to create tenant")
}

func (s *postgresStore) ListTenants(ctx context.Context) ([]*Tenant, error) {
	tenants := []*Tenant{}
	err := s.db.SelectContext(ctx, &tenants, `SELECT * FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tenants")
	}
	return tenants, nil
}

func (s *postgresStore) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	tenant := &Tenant{}
	err := s.db.GetContext(ctx, tenant, `SELECT * FROM tenants WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tenant")
	}
	return tenant, nil
}

func (s *postgresStore) TouchTenant(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET last_used_at = $1 WHERE id = $2`,
		s.clock.Now(), id)
	if err != nil {
		return errors.Wrap(err, "failed to touch tenant")
	}
	return checkAffected(result)
}

func (s *postgresStore) DeleteTenant(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete tenant")
	}
	return checkAffected(result)
}

func (s *postgresStore) CreateStore(ctx context.Context, store *Store) error {
	now := s.clock.Now()
	store.CreatedAt = now
	store.UpdatedAt = now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO stores (
			id, tenant_id, store_name, external_store_id, label,
			api_key_ciphertext, api_key_tag, api_key_nonce,
			created_at, updated_at
		) VALUES (
			:id, :tenant_id, :store_name, :external_store_id, :label,
			:api_key_ciphertext, :api_key_tag, :api_key_nonce,
			:created_at, :updated_at
		)`, store)
	return translateError(err, "failed to create store")
}

func (s *postgresStore) ListStores(ctx context.Context, tenantID string) ([]*Store, error) {
	stores := []*Store{}
	err := s.db.SelectContext(ctx, &stores,
		`SELECT * FROM stores WHERE tenant_id = $1 ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stores")
	}
	return stores, nil
}

func (s *postgresStore) GetStore(ctx context.Context, tenantID, id string) (*Store, error) {
	store := &Store{}
	err := s.db.GetContext(ctx, store,
		`SELECT * FROM stores WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get store")
	}
	return store, nil
}

func (s *postgresStore) DeleteStore(ctx context.Context, tenantID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM stores WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete store")
	}
	return checkAffected(result)
}

func (s *postgresStore) InsertAuditRecord(ctx context.Context, record *AuditRecord) error {
	record.CreatedAt = s.clock.Now()
	if len(record.Details) == 0 {
		record.Details = []byte("{}")
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO audit_log (id, tenant_id, correlation_id, action, resource, result, details, created_at)
		VALUES (:id, :tenant_id, :correlation_id, :action, :resource, :result, :details, :created_at)`,
		record)
	return translateError(err, "failed to insert audit record")
}

func (s *postgresStore) ListAuditRecords(ctx context.Context, tenantID string, limit int) ([]*AuditRecord, error) {
	records := []*AuditRecord{}
	err := s.db.SelectContext(ctx, &records,
		`SELECT * FROM audit_log WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`,
		tenantID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit records")
	}
	return records, nil
}

// translateError 把驱动层唯一约束冲突翻译为 ErrDuplicate
func translateError(err error, message string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return ErrDuplicate
	}
	return errors.Wrap(err, message)
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
