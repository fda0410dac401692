package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = upstream.Credentials{StoreID: "42174", APIKey: "test-api-key"}

func newClient(t *testing.T, baseURL string) upstream.Client {
	t.Helper()
	cfg := upstream.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.RetryBaseDelay = time.Millisecond
	clock := time2.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	pumpClock(t, clock)
	return upstream.NewClient(cfg, clock)
}

// pumpClock 后台持续推进模拟时钟，让退避 Sleep 立即醒来
func pumpClock(t *testing.T, clock *time2.MockClock) {
	t.Helper()
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				clock.AdvanceToNextWakeup()
				time.Sleep(100 * time.Microsecond)
			}
		}
	}()
}

func TestGet_SendsCredentialHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42174", r.Header.Get("ORDERDESK-STORE-ID"))
		assert.Equal(t, "test-api-key", r.Header.Get("ORDERDESK-API-KEY"))
		assert.Equal(t, "/orders/1001", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"id":"1001"}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	raw, err := client.Get(context.Background(), testCreds, "/orders/1001", map[string]string{"status": "open"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1001"}`, string(raw))
}

func TestDo_NotFoundMapsWithoutRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Get(context.Background(), testCreds, "/orders/9999", nil)
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeNotFound, gwerrors.CodeOf(err))
	assert.Equal(t, 1, calls)
}

func TestDo_UnauthorizedMapsToAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Get(context.Background(), testCreds, "/orders", nil)
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeAuth, gwerrors.CodeOf(err))
}

func TestDo_ConflictMapsToConflictError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Put(context.Background(), testCreds, "/orders/1001", map[string]interface{}{"email": "a@b.c"})
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeConflict, gwerrors.CodeOf(err))
}

func TestDo_TransientServerErrorIsRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"1001"}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	raw, err := client.Get(context.Background(), testCreds, "/orders/1001", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1001"}`, string(raw))
	assert.Equal(t, 3, calls)
}

func TestDo_RetryBudgetExhaustedReturnsUpstreamError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	_, err := client.Get(context.Background(), testCreds, "/orders", nil)
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeUpstream, gwerrors.CodeOf(err))
	// 首次 + 3 次重试
	assert.Equal(t, 4, calls)
}

func TestDo_TooManyRequestsHonorsRetryAfter(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := upstream.DefaultConfig()
	cfg.BaseURL = server.URL
	clock := time2.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	pumpClock(t, clock)
	client := upstream.NewClient(cfg, clock)

	start := clock.Now()
	_, err := client.Get(context.Background(), testCreds, "/orders", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	// 退避采用上游建议的 2 秒
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 2*time.Second)
}

func TestTest_SucceedsAgainstTestEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	require.NoError(t, client.Test(context.Background(), testCreds))
}
