package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	headerStoreID = "ORDERDESK-STORE-ID"
	headerAPIKey  = "ORDERDESK-API-KEY" //nolint:gosec // header name, not a credential
)

// Client 面向上游店铺平台的 HTTP 客户端
// 瞬时故障（网络错误、5xx、429）自动重试；其余 4xx 立即映射为领域错误
type Client interface {
	Get(ctx context.Context, creds Credentials, path string, query map[string]string) ([]byte, error)
	Post(ctx context.Context, creds Credentials, path string, body interface{}) ([]byte, error)
	Put(ctx context.Context, creds Credentials, path string, body interface{}) ([]byte, error)
	Delete(ctx context.Context, creds Credentials, path string) ([]byte, error)
	Test(ctx context.Context, creds Credentials) error
}

type client struct {
	cfg   Config
	http  *http.Client
	clock time2.Clock
}

// NewClient 创建上游客户端
//
//nolint:ireturn
func NewClient(cfg Config, clock time2.Clock) Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
		MaxIdleConnsPerHost: 8,
	}

	return &client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		clock: clock,
	}
}

func (c *client) Get(ctx context.Context, creds Credentials, path string, query map[string]string) ([]byte, error) {
	return c.do(ctx, creds, http.MethodGet, path, query, nil)
}

func (c *client) Post(ctx context.Context, creds Credentials, path string, body interface{}) ([]byte, error) {
	return c.do(ctx, creds, http.MethodPost, path, nil, body)
}

func (c *client) Put(ctx context.Context, creds Credentials, path string, body interface{}) ([]byte, error) {
	return c.do(ctx, creds, http.MethodPut, path, nil, body)
}

func (c *client) Delete(ctx context.Context, creds Credentials, path string) ([]byte, error) {
	return c.do(ctx, creds, http.MethodDelete, path, nil, nil)
}

// Test 校验凭据是否能访问上游店铺
func (c *client) Test(ctx context.Context, creds Credentials) error {
	_, err := c.do(ctx, creds, http.MethodGet, "/test", nil, nil)
	return err
}

// do 发送一次上游调用，瞬时故障按指数退避重试
// 退避 = base * 2^attempt + 抖动；429 优先采用上游给出的 Retry-After
func (c *client) do(ctx context.Context, creds Credentials, method, path string, query map[string]string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal upstream request body")
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "upstream request canceled")
		}
		if attempt > 0 {
			c.clock.Sleep(c.backoff(attempt, lastErr))
		}

		result, retryable, err := c.doOnce(ctx, creds, method, path, query, payload)
		if err == nil {
			return result, nil
		}
		if !retryable {
			return nil, err
		}

		lastErr = err
		log.Ctx(ctx).Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt+1).
			Msg("transient upstream failure, will retry")
	}

	return nil, lastErr
}

// doOnce 单次请求；第二个返回值表示失败是否可重试
func (c *client) doOnce(ctx context.Context, creds Credentials, method, path string, query map[string]string, payload []byte) ([]byte, bool, error) {
	target, err := c.buildURL(path, query)
	if err != nil {
		return nil, false, err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to build upstream request")
	}

	req.Header.Set(headerStoreID, creds.StoreID)
	req.Header.Set(headerAPIKey, creds.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// 网络层失败一律视为瞬时
		return nil, true, gwerrors.NewUpstream("upstream request failed", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, gwerrors.NewUpstream("failed to read upstream response", resp.StatusCode, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, false, nil
	}

	return nil, isTransientStatus(resp.StatusCode), c.mapStatus(resp, raw, method, path)
}

func (c *client) buildURL(path string, query map[string]string) (string, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid upstream base URL")
	}

	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(path, "/")

	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		base.RawQuery = values.Encode()
	}
	return base.String(), nil
}

// mapStatus 把上游状态码翻译为领域错误
func (c *client) mapStatus(resp *http.Response, raw []byte, method, path string) error {
	message := upstreamMessage(raw)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return gwerrors.NewAuth("upstream rejected store credentials")
	case http.StatusNotFound:
		return gwerrors.NewNotFound("resource", strings.TrimLeft(path, "/"))
	case http.StatusConflict:
		return gwerrors.NewConflict("upstream reported a concurrent modification", 0)
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("X-Retry-After"), resp.Header.Get("Retry-After"))
		return gwerrors.NewRateLimit(
			fmt.Sprintf("upstream rate limit hit. Try again in %d seconds", retryAfter),
			retryAfter,
		)
	}

	if message == "" {
		message = fmt.Sprintf("upstream returned status %d for %s %s", resp.StatusCode, method, path)
	}
	return gwerrors.NewUpstream(message, resp.StatusCode, nil)
}

// backoff 指数退避加抖动；上游限流时优先使用其建议的等待时间
func (c *client) backoff(attempt int, lastErr error) time.Duration {
	if gwerrors.CodeOf(lastErr) == gwerrors.CodeRateLimit {
		var gwErr *gwerrors.Error
		if errors.As(lastErr, &gwErr) {
			if seconds, ok := gwErr.Details["retry_after_seconds"].(int); ok && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}

	delay := c.cfg.RetryBaseDelay << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(c.cfg.RetryBaseDelay))) //nolint:gosec // backoff jitter
	return delay + jitter
}

func isTransientStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// upstreamMessage 尽力从上游错误体中提取可读消息
func upstreamMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ""
	}
	return parsed.Message
}

func parseRetryAfter(values ...string) int {
	for _, v := range values {
		if v == "" {
			continue
		}
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return seconds
		}
	}
	return 1
}
