package storage

import "time"

// Tenant 租户元数据；主密钥只保留 bcrypt 哈希，派生盐独立于哈希盐
type Tenant struct {
	ID            string    `db:"id"`
	MasterKeyHash string    `db:"master_key_hash"`
	KDFSalt       string    `db:"kdf_salt"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	LastUsedAt    time.Time `db:"last_used_at"`
}

// Store 店铺档案；API 密钥只以密文三元组落库，明文永不持久化
type Store struct {
	ID               string    `db:"id"`
	TenantID         string    `db:"tenant_id"`
	StoreName        string    `db:"store_name"`
	ExternalStoreID  string    `db:"external_store_id"`
	Label            string    `db:"label"`
	APIKeyCiphertext string    `db:"api_key_ciphertext"`
	APIKeyTag        string    `db:"api_key_tag"`
	APIKeyNonce      string    `db:"api_key_nonce"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// AuditRecord 审计日志行；Details 为脱敏后的 JSON
type AuditRecord struct {
	ID            string    `db:"id"`
	TenantID      string    `db:"tenant_id"`
	CorrelationID string    `db:"correlation_id"`
	Action        string    `db:"action"`
	Resource      string    `db:"resource"`
	Result        string    `db:"result"`
	Details       []byte    `db:"details"`
	CreatedAt     time.Time `db:"created_at"`
}
