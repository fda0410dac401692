package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/cache"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*cache.Manager, *time2.MockClock) {
	t.Helper()
	clock := time2.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return cache.NewManager(cache.NewMemoryBackend(clock)), clock
}

func countingFetch(value []byte) (cache.FetchFunc, *int) {
	calls := 0
	return func(_ context.Context) ([]byte, error) {
		calls++
		return value, nil
	}, &calls
}

func TestGetOrFetch_FetchesOnceWithinTTL(t *testing.T) {
	manager, _ := newManager(t)
	key := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders"}
	fetch, calls := countingFetch([]byte(`{"id":"1001"}`))

	for i := 0; i < 5; i++ {
		value, err := manager.GetOrFetch(context.Background(), key, fetch)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"id":"1001"}`), value)
	}

	assert.Equal(t, 1, *calls)
}

func TestGetOrFetch_RefetchesAfterTTLExpiry(t *testing.T) {
	manager, clock := newManager(t)
	key := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders"}
	fetch, calls := countingFetch([]byte(`{"id":"1001"}`))

	_, err := manager.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)

	// orders TTL 为 15 秒
	clock.Advance(16 * time.Second)

	_, err = manager.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestGetOrFetch_RefetchesAfterInvalidate(t *testing.T) {
	manager, _ := newManager(t)
	key := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders"}
	fetch, calls := countingFetch([]byte(`{"id":"1001"}`))

	_, err := manager.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)

	require.NoError(t, manager.Invalidate(context.Background(), "tenant-1", "store-1", "orders"))

	_, err = manager.GetOrFetch(context.Background(), key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestInvalidate_OnlyTouchesMatchingClass(t *testing.T) {
	manager, _ := newManager(t)
	orderKey := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders"}
	productKey := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "products"}

	orderFetch, orderCalls := countingFetch([]byte(`[]`))
	productFetch, productCalls := countingFetch([]byte(`[]`))

	_, err := manager.GetOrFetch(context.Background(), orderKey, orderFetch)
	require.NoError(t, err)
	_, err = manager.GetOrFetch(context.Background(), productKey, productFetch)
	require.NoError(t, err)

	require.NoError(t, manager.Invalidate(context.Background(), "tenant-1", "store-1", "orders"))

	_, err = manager.GetOrFetch(context.Background(), orderKey, orderFetch)
	require.NoError(t, err)
	_, err = manager.GetOrFetch(context.Background(), productKey, productFetch)
	require.NoError(t, err)

	assert.Equal(t, 2, *orderCalls)
	assert.Equal(t, 1, *productCalls)
}

func TestInvalidateStore_TouchesAllClasses(t *testing.T) {
	manager, _ := newManager(t)
	orderKey := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders"}
	otherStoreKey := cache.Key{TenantID: "tenant-1", StoreID: "store-2", ResourceClass: "orders"}

	orderFetch, orderCalls := countingFetch([]byte(`[]`))
	otherFetch, otherCalls := countingFetch([]byte(`[]`))

	_, err := manager.GetOrFetch(context.Background(), orderKey, orderFetch)
	require.NoError(t, err)
	_, err = manager.GetOrFetch(context.Background(), otherStoreKey, otherFetch)
	require.NoError(t, err)

	require.NoError(t, manager.InvalidateStore(context.Background(), "tenant-1", "store-1"))

	_, err = manager.GetOrFetch(context.Background(), orderKey, orderFetch)
	require.NoError(t, err)
	_, err = manager.GetOrFetch(context.Background(), otherStoreKey, otherFetch)
	require.NoError(t, err)

	assert.Equal(t, 2, *orderCalls)
	assert.Equal(t, 1, *otherCalls)
}

func TestGetOrFetch_DistinctQueriesGetDistinctEntries(t *testing.T) {
	manager, _ := newManager(t)
	keyA := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders", Query: map[string]string{"status": "open"}}
	keyB := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders", Query: map[string]string{"status": "closed"}}

	fetchA, callsA := countingFetch([]byte(`["open"]`))
	fetchB, callsB := countingFetch([]byte(`["closed"]`))

	valueA, err := manager.GetOrFetch(context.Background(), keyA, fetchA)
	require.NoError(t, err)
	valueB, err := manager.GetOrFetch(context.Background(), keyB, fetchB)
	require.NoError(t, err)

	assert.Equal(t, []byte(`["open"]`), valueA)
	assert.Equal(t, []byte(`["closed"]`), valueB)
	assert.Equal(t, 1, *callsA)
	assert.Equal(t, 1, *callsB)
}

func TestGetOrFetch_FetchErrorPropagates(t *testing.T) {
	manager, _ := newManager(t)
	key := cache.Key{TenantID: "tenant-1", StoreID: "store-1", ResourceClass: "orders"}

	fetchErr := errors.New("upstream unavailable")
	_, err := manager.GetOrFetch(context.Background(), key, func(_ context.Context) ([]byte, error) {
		return nil, fetchErr
	})
	require.ErrorIs(t, err, fetchErr)
}

func TestKeyString_QuerySignatureIsOrderIndependent(t *testing.T) {
	keyA := cache.Key{TenantID: "t", StoreID: "s", ResourceClass: "orders", Query: map[string]string{"a": "1", "b": "2"}}
	keyB := cache.Key{TenantID: "t", StoreID: "s", ResourceClass: "orders", Query: map[string]string{"b": "2", "a": "1"}}

	assert.Equal(t, keyA.String(), keyB.String())
}

func TestKeyString_EmptyQueryUsesDefaultSignature(t *testing.T) {
	key := cache.Key{TenantID: "t", StoreID: "s", ResourceClass: "orders"}
	assert.Equal(t, "t:s:orders:default", key.String())
}
