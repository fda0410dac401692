package types

import (
	"github.com/go-openapi/strfmt"
	"github.com/pkg/errors"
)

// PostRegisterStorePayload 店铺注册请求
type PostRegisterStorePayload struct {
	// Required: true
	StoreName *string `json:"store_name"`
	// 上游平台的店铺 ID
	// Required: true
	StoreID *string `json:"store_id"`
	// Required: true
	APIKey *string `json:"api_key"`
	// 可选的展示备注
	Label *string `json:"label,omitempty"`
}

// Validate validates this post register store payload
func (m *PostRegisterStorePayload) Validate(_ strfmt.Registry) error {
	if m.StoreName == nil || *m.StoreName == "" {
		return errors.New("store_name is required")
	}
	if m.StoreID == nil || *m.StoreID == "" {
		return errors.New("store_id is required")
	}
	if m.APIKey == nil || *m.APIKey == "" {
		return errors.New("api_key is required")
	}
	return nil
}

// StoreProfileResponse 店铺档案；绝不携带密钥材料
type StoreProfileResponse struct {
	// Required: true
	ID *string `json:"id"`
	// Required: true
	StoreName *string `json:"store_name"`
	// Required: true
	StoreID   *string         `json:"store_id"`
	Label     string          `json:"label,omitempty"`
	CreatedAt strfmt.DateTime `json:"created_at,omitempty"`
	UpdatedAt strfmt.DateTime `json:"updated_at,omitempty"`
}

// Validate validates this store profile response
func (m *StoreProfileResponse) Validate(_ strfmt.Registry) error {
	if m.ID == nil {
		return errors.New("id is required")
	}
	if m.StoreName == nil {
		return errors.New("store_name is required")
	}
	if m.StoreID == nil {
		return errors.New("store_id is required")
	}
	return nil
}

// GetListStoresResponse 店铺列表
type GetListStoresResponse struct {
	Stores []*StoreProfileResponse `json:"stores"`
	Total  int64                   `json:"total"`
}

// Validate validates this get list stores response
func (m *GetListStoresResponse) Validate(formats strfmt.Registry) error {
	for _, store := range m.Stores {
		if store == nil {
			continue
		}
		if err := store.Validate(formats); err != nil {
			return err
		}
	}
	return nil
}

// PostUseStorePayload 选中店铺请求；store 可以是外部 ID 或店铺名
type PostUseStorePayload struct {
	// Required: true
	Store *string `json:"store"`
}

// Validate validates this post use store payload
func (m *PostUseStorePayload) Validate(_ strfmt.Registry) error {
	if m.Store == nil || *m.Store == "" {
		return errors.New("store is required")
	}
	return nil
}

// GenericMessageResponse 简单操作结果
type GenericMessageResponse struct {
	// Required: true
	Message *string `json:"message"`
}

// Validate validates this generic message response
func (m *GenericMessageResponse) Validate(_ strfmt.Registry) error {
	if m.Message == nil {
		return errors.New("message is required")
	}
	return nil
}
