package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/audit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/session"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/storage"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/store"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/upstream"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	testErr   error
	lastCreds upstream.Credentials
}

func (f *fakeUpstream) Get(_ context.Context, _ upstream.Credentials, _ string, _ map[string]string) ([]byte, error) {
	panic("not used")
}

func (f *fakeUpstream) Post(_ context.Context, _ upstream.Credentials, _ string, _ interface{}) ([]byte, error) {
	panic("not used")
}

func (f *fakeUpstream) Put(_ context.Context, _ upstream.Credentials, _ string, _ interface{}) ([]byte, error) {
	panic("not used")
}

func (f *fakeUpstream) Delete(_ context.Context, _ upstream.Credentials, _ string) ([]byte, error) {
	panic("not used")
}

func (f *fakeUpstream) Test(_ context.Context, creds upstream.Credentials) error {
	f.lastCreds = creds
	return f.testErr
}

func newService(t *testing.T) (store.Service, *session.Context, *fakeUpstream) {
	t.Helper()
	clock := time2.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	meta := storage.NewMemoryStore(clock)
	v := vault.NewService()

	sess := session.New()
	key, err := v.DeriveTenantKey("test master key", "aabbccdd")
	require.NoError(t, err)

	tenantRecord := &storage.Tenant{ID: "tenant-1", MasterKeyHash: "x", KDFSalt: "aabbccdd"}
	require.NoError(t, meta.CreateTenant(context.Background(), tenantRecord))
	sess.SetTenant("tenant-1", key)

	fake := &fakeUpstream{}
	return store.NewService(meta, v, fake, audit.NewLogger(meta)), sess, fake
}

func TestRegister_AndResolveByExternalID(t *testing.T) {
	svc, sess, _ := newService(t)

	profile, err := svc.Register(context.Background(), sess, "prod", "42174", "sk_live_abc", "")
	require.NoError(t, err)
	assert.Equal(t, "prod", profile.StoreName)
	assert.Equal(t, "42174", profile.ExternalStoreID)

	resolved, err := svc.Resolve(context.Background(), sess, "42174")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, resolved.ID)
}

func TestRegister_LabelIsStoredAndReturned(t *testing.T) {
	svc, sess, _ := newService(t)

	profile, err := svc.Register(context.Background(), sess, "prod", "42174", "key", "primary fulfillment")
	require.NoError(t, err)
	assert.Equal(t, "primary fulfillment", profile.Label)

	profiles, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "primary fulfillment", profiles[0].Label)

	// 标签只是展示备注，不参与标识解析
	_, err = svc.Resolve(context.Background(), sess, "primary fulfillment")
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeNotFound, gwerrors.CodeOf(err))
}

func TestResolve_ExternalIDTakesPrecedenceOverName(t *testing.T) {
	svc, sess, _ := newService(t)

	byID, err := svc.Register(context.Background(), sess, "42174", "99999", "key-a", "")
	require.NoError(t, err)
	byExternal, err := svc.Register(context.Background(), sess, "other", "42174", "key-b", "")
	require.NoError(t, err)

	// "42174" 同时是一个店铺名和另一个店铺的外部 ID；外部 ID 优先
	resolved, err := svc.Resolve(context.Background(), sess, "42174")
	require.NoError(t, err)
	assert.Equal(t, byExternal.ID, resolved.ID)
	assert.NotEqual(t, byID.ID, resolved.ID)
}

func TestResolve_NameMatchIsCaseSensitive(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Register(context.Background(), sess, "Prod", "42174", "key", "")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), sess, "prod")
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeNotFound, gwerrors.CodeOf(err))

	resolved, err := svc.Resolve(context.Background(), sess, "Prod")
	require.NoError(t, err)
	assert.Equal(t, "Prod", resolved.StoreName)
}

func TestRegister_DuplicateNameIsConflict(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Register(context.Background(), sess, "prod", "42174", "key", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), sess, "prod", "99999", "key", "")
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeConflict, gwerrors.CodeOf(err))
}

func TestList_NeverExposesKeyMaterial(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Register(context.Background(), sess, "prod", "42174", "sk_live_abc", "")
	require.NoError(t, err)

	profiles, err := svc.List(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	// Profile 结构本身不含密钥字段；这里校验返回值确实只有档案数据
	assert.Equal(t, "prod", profiles[0].StoreName)
	assert.Equal(t, "42174", profiles[0].ExternalStoreID)
}

func TestCredentials_RoundTripsAPIKey(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Register(context.Background(), sess, "prod", "42174", "sk_live_abc", "")
	require.NoError(t, err)

	creds, _, err := svc.Credentials(context.Background(), sess, "prod")
	require.NoError(t, err)
	assert.Equal(t, "42174", creds.StoreID)
	assert.Equal(t, "sk_live_abc", creds.APIKey)
}

func TestCredentials_WrongTenantKeyIsIntegrityError(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Register(context.Background(), sess, "prod", "42174", "sk_live_abc", "")
	require.NoError(t, err)

	// 换一把派生密钥模拟密钥轮换错误或跨租户访问
	otherKey, err := vault.NewService().DeriveTenantKey("another master key", "aabbccdd")
	require.NoError(t, err)
	sess.SetTenant("tenant-1", otherKey)

	_, _, err = svc.Credentials(context.Background(), sess, "prod")
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeIntegrity, gwerrors.CodeOf(err))
}

func TestUse_SetsActiveStoreForEmptyIdentifier(t *testing.T) {
	svc, sess, _ := newService(t)

	profile, err := svc.Register(context.Background(), sess, "prod", "42174", "key", "")
	require.NoError(t, err)

	_, err = svc.Use(context.Background(), sess, "prod")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, sess.ActiveStoreID)

	// 选中后，空标识解析到当前店铺
	resolved, err := svc.Resolve(context.Background(), sess, "")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, resolved.ID)
}

func TestResolve_EmptyIdentifierWithoutActiveStore(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Resolve(context.Background(), sess, "")
	require.Error(t, err)
	assert.Equal(t, gwerrors.CodeValidation, gwerrors.CodeOf(err))
}

func TestDelete_ClearsActiveStoreSelection(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Register(context.Background(), sess, "prod", "42174", "key", "")
	require.NoError(t, err)
	_, err = svc.Use(context.Background(), sess, "prod")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), sess, "prod"))
	assert.Empty(t, sess.ActiveStoreID)

	_, err = svc.Resolve(context.Background(), sess, "prod")
	assert.Equal(t, gwerrors.CodeNotFound, gwerrors.CodeOf(err))
}

func TestTest_PassesDecryptedCredentials(t *testing.T) {
	svc, sess, fake := newService(t)

	_, err := svc.Register(context.Background(), sess, "prod", "42174", "sk_live_abc", "")
	require.NoError(t, err)

	require.NoError(t, svc.Test(context.Background(), sess, "prod"))
	assert.Equal(t, "42174", fake.lastCreds.StoreID)
	assert.Equal(t, "sk_live_abc", fake.lastCreds.APIKey)
}

func TestOperations_RequireAuthentication(t *testing.T) {
	svc, _, _ := newService(t)
	anon := session.New()

	_, err := svc.List(context.Background(), anon)
	assert.Equal(t, gwerrors.CodeAuth, gwerrors.CodeOf(err))

	_, err = svc.Register(context.Background(), anon, "prod", "42174", "key", "")
	assert.Equal(t, gwerrors.CodeAuth, gwerrors.CodeOf(err))
}
