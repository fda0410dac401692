package types

import (
	"github.com/go-openapi/strfmt"
	"github.com/pkg/errors"
)

// PostAuthenticatePayload 认证请求
type PostAuthenticatePayload struct {
	// 租户主密钥
	// Required: true
	MasterKey *string `json:"master_key"`
}

// Validate validates this post authenticate payload
func (m *PostAuthenticatePayload) Validate(_ strfmt.Registry) error {
	if m.MasterKey == nil || *m.MasterKey == "" {
		return errors.New("master_key is required")
	}
	return nil
}

// PostAuthenticateResponse 认证结果
type PostAuthenticateResponse struct {
	// Required: true
	TenantID *string `json:"tenant_id"`
	// 本次认证是否自动开通了新租户
	NewlyProvisioned bool `json:"newly_provisioned"`
	// 该租户已注册的店铺数量
	StoreCount int64 `json:"store_count"`
}

// Validate validates this post authenticate response
func (m *PostAuthenticateResponse) Validate(_ strfmt.Registry) error {
	if m.TenantID == nil {
		return errors.New("tenant_id is required")
	}
	return nil
}

// PostCreateTenantPayload 创建租户请求；主密钥可省略，由服务端生成
type PostCreateTenantPayload struct {
	MasterKey string `json:"master_key,omitempty"`
}

// Validate validates this post create tenant payload
func (m *PostCreateTenantPayload) Validate(_ strfmt.Registry) error {
	return nil
}

// PostCreateTenantResponse 创建租户结果；生成的主密钥只在这里出现一次
type PostCreateTenantResponse struct {
	// Required: true
	TenantID  *string `json:"tenant_id"`
	MasterKey string  `json:"master_key,omitempty"`
}

// Validate validates this post create tenant response
func (m *PostCreateTenantResponse) Validate(_ strfmt.Registry) error {
	if m.TenantID == nil {
		return errors.New("tenant_id is required")
	}
	return nil
}
