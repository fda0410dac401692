package tenant

import (
	"context"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/audit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/session"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/storage"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/vault"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Config 租户服务参数
type Config struct {
	// AutoProvision 为真时，未匹配任何租户的主密钥会自动开通新租户
	AutoProvision bool
}

// Service 租户认证与生命周期服务接口
type Service interface {
	Authenticate(ctx context.Context, sess *session.Context, masterKey string) (*AuthResult, error)
	Create(ctx context.Context, masterKey string) (*CreateResult, error)
	Delete(ctx context.Context, sess *session.Context) error
}

// AuthResult 认证结果
type AuthResult struct {
	TenantID         string
	NewlyProvisioned bool
}

// CreateResult 租户创建结果；MasterKey 只在生成时返回一次
type CreateResult struct {
	TenantID  string
	MasterKey string
}

type service struct {
	cfg   Config
	store storage.MetadataStore
	vault vault.Service
	audit *audit.Logger
}

// NewService 创建租户服务
//
//nolint:ireturn
func NewService(cfg Config, store storage.MetadataStore, v vault.Service, auditLogger *audit.Logger) Service {
	return &service{cfg: cfg, store: store, vault: v, audit: auditLogger}
}

// Authenticate 用主密钥认证租户
// 主密钥不携带租户标识，只能对全部租户做 bcrypt 线性比对；
// 为避免计时侧信道泄露命中位置，扫描永远走完整个列表
func (s *service) Authenticate(ctx context.Context, sess *session.Context, masterKey string) (*AuthResult, error) {
	if masterKey == "" {
		return nil, gwerrors.NewValidation("master_key is required", []string{"master_key"}, nil, nil)
	}

	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, gwerrors.NewUpstream("failed to load tenant records", 0, err)
	}

	var matched *storage.Tenant
	for _, candidate := range tenants {
		if s.vault.VerifySecret(masterKey, candidate.MasterKeyHash) && matched == nil {
			matched = candidate
		}
	}

	if matched == nil {
		if !s.cfg.AutoProvision {
			s.audit.Record(ctx, "", sess.CorrelationID, "tenant.authenticate", "tenant", audit.ResultDenied, nil)
			return nil, gwerrors.NewAuth("invalid master key")
		}
		return s.provision(ctx, sess, masterKey)
	}

	key, err := s.vault.DeriveTenantKey(masterKey, matched.KDFSalt)
	if err != nil {
		return nil, gwerrors.NewIntegrity("failed to derive tenant key").WithCause(err)
	}

	sess.SetTenant(matched.ID, key)
	if err := s.store.TouchTenant(ctx, matched.ID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("tenant_id", matched.ID).Msg("failed to update tenant last_used_at")
	}

	s.audit.Record(ctx, matched.ID, sess.CorrelationID, "tenant.authenticate", "tenant", audit.ResultSuccess, nil)
	return &AuthResult{TenantID: matched.ID}, nil
}

// provision 自动开通：第一次使用的主密钥直接成为新租户的主密钥
func (s *service) provision(ctx context.Context, sess *session.Context, masterKey string) (*AuthResult, error) {
	hash, salt, err := s.vault.HashSecret(masterKey)
	if err != nil {
		return nil, gwerrors.NewIntegrity("failed to hash master key").WithCause(err)
	}

	tenant := &storage.Tenant{
		ID:            uuid.NewString(),
		MasterKeyHash: hash,
		KDFSalt:       salt,
	}
	if err := s.store.CreateTenant(ctx, tenant); err != nil {
		return nil, gwerrors.NewUpstream("failed to create tenant record", 0, err)
	}

	key, err := s.vault.DeriveTenantKey(masterKey, salt)
	if err != nil {
		return nil, gwerrors.NewIntegrity("failed to derive tenant key").WithCause(err)
	}
	sess.SetTenant(tenant.ID, key)

	s.audit.Record(ctx, tenant.ID, sess.CorrelationID, "tenant.provision", "tenant", audit.ResultSuccess, nil)
	return &AuthResult{TenantID: tenant.ID, NewlyProvisioned: true}, nil
}

// Create 显式创建租户；masterKey 为空时生成随机主密钥并一次性返回
func (s *service) Create(ctx context.Context, masterKey string) (*CreateResult, error) {
	generated := ""
	if masterKey == "" {
		secret, err := s.vault.GenerateMasterSecret()
		if err != nil {
			return nil, gwerrors.NewIntegrity("failed to generate master key").WithCause(err)
		}
		masterKey = secret
		generated = secret
	}

	hash, salt, err := s.vault.HashSecret(masterKey)
	if err != nil {
		return nil, gwerrors.NewIntegrity("failed to hash master key").WithCause(err)
	}

	tenant := &storage.Tenant{
		ID:            uuid.NewString(),
		MasterKeyHash: hash,
		KDFSalt:       salt,
	}
	if err := s.store.CreateTenant(ctx, tenant); err != nil {
		return nil, gwerrors.NewUpstream("failed to create tenant record", 0, err)
	}

	return &CreateResult{TenantID: tenant.ID, MasterKey: generated}, nil
}

// Delete 删除当前租户及其全部店铺档案
func (s *service) Delete(ctx context.Context, sess *session.Context) error {
	tenantID, err := sess.RequireAuth()
	if err != nil {
		return err
	}

	if err := s.store.DeleteTenant(ctx, tenantID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return gwerrors.NewNotFound("tenant", tenantID)
		}
		return gwerrors.NewUpstream("failed to delete tenant record", 0, err)
	}

	s.audit.Record(ctx, tenantID, sess.CorrelationID, "tenant.delete", "tenant", audit.ResultSuccess, nil)
	return nil
}
