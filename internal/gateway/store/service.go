package store

import (
	"context"
	"time"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/audit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/session"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/storage"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/upstream"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/vault"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Profile 店铺档案对外视图；绝不携带密钥明文或密文
type Profile struct {
	ID              string    `json:"id"`
	StoreName       string    `json:"store_name"`
	ExternalStoreID string    `json:"store_id"`
	Label           string    `json:"label,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Service 店铺档案服务接口
// 注册时用租户派生密钥加密 API 密钥；解析凭据只在单次调用内存中存在
type Service interface {
	Register(ctx context.Context, sess *session.Context, storeName, externalStoreID, apiKey, label string) (*Profile, error)
	List(ctx context.Context, sess *session.Context) ([]*Profile, error)
	Resolve(ctx context.Context, sess *session.Context, identifier string) (*Profile, error)
	Credentials(ctx context.Context, sess *session.Context, identifier string) (upstream.Credentials, string, error)
	Use(ctx context.Context, sess *session.Context, identifier string) (*Profile, error)
	Delete(ctx context.Context, sess *session.Context, identifier string) error
	Test(ctx context.Context, sess *session.Context, identifier string) error
}

type service struct {
	store    storage.MetadataStore
	vault    vault.Service
	upstream upstream.Client
	audit    *audit.Logger
}

// NewService 创建店铺档案服务
//
//nolint:ireturn
func NewService(store storage.MetadataStore, v vault.Service, client upstream.Client, auditLogger *audit.Logger) Service {
	return &service{store: store, vault: v, upstream: client, audit: auditLogger}
}

// Register 注册店铺：API 密钥用租户派生密钥加密后落库
// (tenant, store_name) 和 (tenant, external_store_id) 重复都返回 ConflictError
// label 是可选的展示备注，不参与解析和唯一性
func (s *service) Register(ctx context.Context, sess *session.Context, storeName, externalStoreID, apiKey, label string) (*Profile, error) {
	tenantID, err := sess.RequireAuth()
	if err != nil {
		return nil, err
	}

	missing := []string{}
	if storeName == "" {
		missing = append(missing, "store_name")
	}
	if externalStoreID == "" {
		missing = append(missing, "store_id")
	}
	if apiKey == "" {
		missing = append(missing, "api_key")
	}
	if len(missing) > 0 {
		return nil, gwerrors.NewValidation("missing required store fields", missing, nil, map[string]interface{}{
			"store_name": "prod",
			"store_id":   "42174",
			"api_key":    "<orderdesk api key>",
		})
	}

	encrypted, err := s.vault.Encrypt(apiKey, sess.TenantKey)
	if err != nil {
		return nil, gwerrors.NewIntegrity("failed to encrypt store api key").WithCause(err)
	}

	record := &storage.Store{
		ID:               uuid.NewString(),
		TenantID:         tenantID,
		StoreName:        storeName,
		ExternalStoreID:  externalStoreID,
		Label:            label,
		APIKeyCiphertext: encrypted.Ciphertext,
		APIKeyTag:        encrypted.Tag,
		APIKeyNonce:      encrypted.Nonce,
	}

	if err := s.store.CreateStore(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			s.audit.Record(ctx, tenantID, sess.CorrelationID, "store.register", storeName, audit.ResultFailure, nil)
			return nil, gwerrors.NewConflict("a store with this name or id is already registered", 0)
		}
		return nil, gwerrors.NewUpstream("failed to persist store record", 0, err)
	}

	s.audit.Record(ctx, tenantID, sess.CorrelationID, "store.register", storeName, audit.ResultSuccess, map[string]interface{}{
		"store_id": externalStoreID,
	})
	return toProfile(record), nil
}

// List 列出当前租户的全部店铺档案
func (s *service) List(ctx context.Context, sess *session.Context) ([]*Profile, error) {
	tenantID, err := sess.RequireAuth()
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListStores(ctx, tenantID)
	if err != nil {
		return nil, gwerrors.NewUpstream("failed to list store records", 0, err)
	}

	profiles := make([]*Profile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, toProfile(record))
	}
	return profiles, nil
}

// Resolve 把调用方给出的标识解析为具体店铺
// 先精确匹配外部店铺 ID，再精确匹配店铺名（区分大小写）；
// 标识为空时回落到会话当前店铺
func (s *service) Resolve(ctx context.Context, sess *session.Context, identifier string) (*Profile, error) {
	record, err := s.resolveRecord(ctx, sess, identifier)
	if err != nil {
		return nil, err
	}
	return toProfile(record), nil
}

func (s *service) resolveRecord(ctx context.Context, sess *session.Context, identifier string) (*storage.Store, error) {
	tenantID, err := sess.RequireAuth()
	if err != nil {
		return nil, err
	}

	if identifier == "" {
		if sess.ActiveStoreID == "" {
			return nil, gwerrors.NewValidation(
				"no store specified and no active store selected",
				[]string{"store"}, nil, nil)
		}
		record, err := s.store.GetStore(ctx, tenantID, sess.ActiveStoreID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, gwerrors.NewNotFound("store", sess.ActiveStoreID)
			}
			return nil, gwerrors.NewUpstream("failed to load store record", 0, err)
		}
		return record, nil
	}

	records, err := s.store.ListStores(ctx, tenantID)
	if err != nil {
		return nil, gwerrors.NewUpstream("failed to list store records", 0, err)
	}

	for _, record := range records {
		if record.ExternalStoreID == identifier {
			return record, nil
		}
	}
	for _, record := range records {
		if record.StoreName == identifier {
			return record, nil
		}
	}
	return nil, gwerrors.NewNotFound("store", identifier)
}

// Credentials 解密店铺凭据；返回的 API 密钥只存在于本次调用的内存中
func (s *service) Credentials(ctx context.Context, sess *session.Context, identifier string) (upstream.Credentials, string, error) {
	record, err := s.resolveRecord(ctx, sess, identifier)
	if err != nil {
		return upstream.Credentials{}, "", err
	}

	apiKey, err := s.vault.Decrypt(&vault.Ciphertext{
		Ciphertext: record.APIKeyCiphertext,
		Tag:        record.APIKeyTag,
		Nonce:      record.APIKeyNonce,
	}, sess.TenantKey)
	if err != nil {
		if errors.Is(err, vault.ErrIntegrity) {
			s.audit.Record(ctx, record.TenantID, sess.CorrelationID, "store.decrypt", record.StoreName, audit.ResultFailure, nil)
			return upstream.Credentials{}, "", gwerrors.NewIntegrity("store credential failed integrity check")
		}
		return upstream.Credentials{}, "", gwerrors.NewIntegrity("failed to decrypt store credential").WithCause(err)
	}

	return upstream.Credentials{StoreID: record.ExternalStoreID, APIKey: apiKey}, record.ID, nil
}

// Use 选中店铺作为会话当前店铺
func (s *service) Use(ctx context.Context, sess *session.Context, identifier string) (*Profile, error) {
	record, err := s.resolveRecord(ctx, sess, identifier)
	if err != nil {
		return nil, err
	}
	sess.SetActiveStore(record.ID)
	return toProfile(record), nil
}

// Delete 删除店铺档案并清除会话中的选中状态
func (s *service) Delete(ctx context.Context, sess *session.Context, identifier string) error {
	record, err := s.resolveRecord(ctx, sess, identifier)
	if err != nil {
		return err
	}

	if err := s.store.DeleteStore(ctx, record.TenantID, record.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return gwerrors.NewNotFound("store", identifier)
		}
		return gwerrors.NewUpstream("failed to delete store record", 0, err)
	}

	if sess.ActiveStoreID == record.ID {
		sess.SetActiveStore("")
	}

	s.audit.Record(ctx, record.TenantID, sess.CorrelationID, "store.delete", record.StoreName, audit.ResultSuccess, nil)
	return nil
}

// Test 用解密出的凭据对上游做一次连通性校验
func (s *service) Test(ctx context.Context, sess *session.Context, identifier string) error {
	creds, _, err := s.Credentials(ctx, sess, identifier)
	if err != nil {
		return err
	}
	return s.upstream.Test(ctx, creds)
}

func toProfile(record *storage.Store) *Profile {
	return &Profile{
		ID:              record.ID,
		StoreName:       record.StoreName,
		ExternalStoreID: record.ExternalStoreID,
		Label:           record.Label,
		CreatedAt:       record.CreatedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}
