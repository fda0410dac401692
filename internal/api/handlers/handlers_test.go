package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/router"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/config"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer 组装内存后端的完整服务，上游指向给定的桩服务器
func newTestServer(t *testing.T, upstreamURL string) *api.Server {
	t.Helper()

	cfg := config.Server{
		Echo: config.EchoServer{
			ListenAddress:                  ":0",
			HideInternalServerErrorDetails: true,
		},
		Auth: config.Auth{
			AutoProvision: true,
			KMSKey:        bytes.Repeat([]byte{0x42}, 32),
		},
		RateLimit: config.RateLimit{
			TenantPerMinute:  120,
			LoginPerMinute:   30,
			SignupPerMinute:  10,
			ConsolePerMinute: 30,
		},
		Cache: config.Cache{
			Backend: "memory",
		},
		Upstream: config.Upstream{
			BaseURL:        upstreamURL,
			ConnectTimeout: time.Second,
			RequestTimeout: 5 * time.Second,
			MaxRetries:     1,
			RetryBaseDelay: time.Millisecond,
		},
		Gateway: config.Gateway{
			StorageBackend: "memory",
		},
	}

	s, err := api.InitNewServerWithDB(cfg, nil, t)
	require.NoError(t, err)
	router.Init(s)
	return s
}

func doJSON(t *testing.T, s *api.Server, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestTenantSignupAndStoreLifecycle(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("ORDERDESK-STORE-ID"))
		assert.Equal(t, "sk-order-desk", r.Header.Get("ORDERDESK-API-KEY"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order":{"id":"123","status":"open"}}`))
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)

	// 开通租户，主密钥由服务端生成并只返回一次
	rec := doJSON(t, s, http.MethodPost, "/api/v1/tenants", "", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	masterKey, _ := created["master_key"].(string)
	require.NotEmpty(t, masterKey)

	// 认证返回租户 ID 和店铺数量
	rec = doJSON(t, s, http.MethodPost, "/api/v1/auth", "", map[string]interface{}{"master_key": masterKey})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	authed := decode(t, rec)
	assert.NotEmpty(t, authed["tenant_id"])
	assert.EqualValues(t, 0, authed["store_count"])

	// 注册店铺
	rec = doJSON(t, s, http.MethodPost, "/api/v1/stores", masterKey, map[string]interface{}{
		"store_name": "Main Shop",
		"store_id":   "S-100",
		"api_key":    "sk-order-desk",
		"label":      "primary",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	profile := decode(t, rec)
	assert.Equal(t, "S-100", profile["store_id"])
	assert.Equal(t, "primary", profile["label"])
	assert.NotContains(t, rec.Body.String(), "sk-order-desk")

	// 列表不含密钥材料
	rec = doJSON(t, s, http.MethodGet, "/api/v1/stores", masterKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	listed := decode(t, rec)
	assert.EqualValues(t, 1, listed["total"])

	// 订单读取透传上游载荷
	rec = doJSON(t, s, http.MethodGet, "/api/v1/stores/S-100/orders/123", masterKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"open"`)

	// 凭据测试
	rec = doJSON(t, s, http.MethodPost, "/api/v1/stores/S-100/test", masterKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 删除店铺
	rec = doJSON(t, s, http.MethodDelete, "/api/v1/stores/S-100", masterKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/v1/stores", masterKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed = decode(t, rec)
	assert.EqualValues(t, 0, listed["total"])
}

func TestAuthenticationRequiredOnStoreRoutes(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	rec := doJSON(t, s, http.MethodGet, "/api/v1/stores", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// 自动开通放行了认证，但新租户没有任何店铺
	rec = doJSON(t, s, http.MethodGet, "/api/v1/stores/S-100/orders/123", "bogus-master-key", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestUnknownStoreIsNotFound(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/tenants", "", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)
	masterKey, _ := decode(t, rec)["master_key"].(string)
	require.NotEmpty(t, masterKey)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/stores/NOPE/orders/1", masterKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	payload := decode(t, rec)
	assert.Equal(t, "NOT_FOUND", payload["code"])
}

func TestAddNoteValidation(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/tenants", "", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)
	masterKey, _ := decode(t, rec)["master_key"].(string)
	require.NotEmpty(t, masterKey)

	// 空备注在打到上游之前就被拒绝
	rec = doJSON(t, s, http.MethodPost, "/api/v1/stores/S-100/orders/1/notes", masterKey, map[string]interface{}{"note": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestAuditTrailIsQueryable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/tenants", "", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)
	masterKey, _ := decode(t, rec)["master_key"].(string)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/stores", masterKey, map[string]interface{}{
		"store_name": "Main Shop",
		"store_id":   "S-100",
		"api_key":    "sk-order-desk",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/v1/audit-logs", masterKey, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	payload := decode(t, rec)
	events, ok := payload["events"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, events)
	// 审计详情不得包含明文密钥
	assert.NotContains(t, rec.Body.String(), "sk-order-desk")
}

func TestAuditLogQueryIsConsoleRateLimited(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	rec := doJSON(t, s, http.MethodPost, "/api/v1/tenants", "", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec)
	masterKey, _ := created["master_key"].(string)
	tenantID, _ := created["tenant_id"].(string)
	require.NotEmpty(t, masterKey)
	require.NotEmpty(t, tenantID)

	// 耗尽控制台配额；突发容量是一分钟稳态配额的两倍
	for i := 0; i < 2*30; i++ {
		_ = s.Limiter.Require(ratelimit.ScopeConsole, tenantID, ratelimit.CostRead)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/v1/audit-logs", masterKey, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, rec.Body.String())

	// 控制台配额不影响业务代理作用域
	rec = doJSON(t, s, http.MethodGet, "/api/v1/stores", masterKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestManagementRoutes(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/-/ready", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/-/healthy", nil)
	rec = httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
