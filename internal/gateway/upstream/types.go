package upstream

import "time"

// DefaultBaseURL OrderDesk API v2 根地址
const DefaultBaseURL = "https://app.orderdesk.me/api/v2"

// Credentials 单次调用的店铺凭据；只在内存中存在，绝不落日志
type Credentials struct {
	StoreID string
	APIKey  string
}

// Config 上游客户端参数
type Config struct {
	BaseURL        string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// DefaultConfig 上游客户端默认参数
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ConnectTimeout: 15 * time.Second,
		RequestTimeout: 60 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 250 * time.Millisecond,
	}
}
