package vault_test

import (
	"encoding/base64"
	"testing"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/vault"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTenantKey_Deterministic(t *testing.T) {
	svc := vault.NewService()

	key1, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)
	key2, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)

	assert.Len(t, key1, 32)
	assert.Equal(t, key1, key2)
}

func TestDeriveTenantKey_DistinctSalts(t *testing.T) {
	svc := vault.NewService()

	key1, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)
	key2, err := svc.DeriveTenantKey("super-secret", "salt-b")
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)
}

func TestDeriveTenantKey_PepperChangesDerivation(t *testing.T) {
	plain := vault.NewService()
	peppered := vault.NewServiceWithPepper([]byte("0123456789abcdef0123456789abcdef"))

	key1, err := plain.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)
	key2, err := peppered.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)

	// 同一 pepper 下派生仍然确定
	key3, err := peppered.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)
	assert.Equal(t, key2, key3)
}

func TestDeriveTenantKey_EmptyInputs(t *testing.T) {
	svc := vault.NewService()

	_, err := svc.DeriveTenantKey("", "salt")
	require.Error(t, err)

	_, err = svc.DeriveTenantKey("secret", "")
	require.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	svc := vault.NewService()
	key, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)

	ct, err := svc.Encrypt("orderdesk-api-key-12345", key)
	require.NoError(t, err)
	assert.NotEmpty(t, ct.Ciphertext)
	assert.NotEmpty(t, ct.Tag)
	assert.NotEmpty(t, ct.Nonce)

	plaintext, err := svc.Decrypt(ct, key)
	require.NoError(t, err)
	assert.Equal(t, "orderdesk-api-key-12345", plaintext)
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	svc := vault.NewService()
	key, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)

	ct1, err := svc.Encrypt("same-plaintext", key)
	require.NoError(t, err)
	ct2, err := svc.Encrypt("same-plaintext", key)
	require.NoError(t, err)

	assert.NotEqual(t, ct1.Nonce, ct2.Nonce)
	assert.NotEqual(t, ct1.Ciphertext, ct2.Ciphertext)
}

func TestDecrypt_TamperedComponentsFailWithIntegrityError(t *testing.T) {
	svc := vault.NewService()
	key, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)

	ct, err := svc.Encrypt("orderdesk-api-key-12345", key)
	require.NoError(t, err)

	flipFirstBit := func(encoded string) string {
		raw, decErr := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, decErr)
		raw[0] ^= 0x01
		return base64.StdEncoding.EncodeToString(raw)
	}

	cases := map[string]*vault.Ciphertext{
		"ciphertext": {Ciphertext: flipFirstBit(ct.Ciphertext), Tag: ct.Tag, Nonce: ct.Nonce},
		"tag":        {Ciphertext: ct.Ciphertext, Tag: flipFirstBit(ct.Tag), Nonce: ct.Nonce},
		"nonce":      {Ciphertext: ct.Ciphertext, Tag: ct.Tag, Nonce: flipFirstBit(ct.Nonce)},
	}

	for name, tampered := range cases {
		_, err := svc.Decrypt(tampered, key)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, vault.ErrIntegrity, name)
	}
}

func TestDecrypt_WrongKeyFailsWithIntegrityError(t *testing.T) {
	svc := vault.NewService()
	key1, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)
	key2, err := svc.DeriveTenantKey("other-secret", "salt-a")
	require.NoError(t, err)

	ct, err := svc.Encrypt("orderdesk-api-key-12345", key1)
	require.NoError(t, err)

	_, err = svc.Decrypt(ct, key2)
	assert.ErrorIs(t, err, vault.ErrIntegrity)
}

func TestDecrypt_MalformedInputDistinctFromIntegrity(t *testing.T) {
	svc := vault.NewService()
	key, err := svc.DeriveTenantKey("super-secret", "salt-a")
	require.NoError(t, err)

	_, err = svc.Decrypt(&vault.Ciphertext{Ciphertext: "%%%", Tag: "", Nonce: ""}, key)
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrMalformedInput)
	assert.False(t, errors.Is(err, vault.ErrIntegrity))
}

func TestEncrypt_InvalidKeyLength(t *testing.T) {
	svc := vault.NewService()

	_, err := svc.Encrypt("plaintext", []byte("too-short"))
	assert.ErrorIs(t, err, vault.ErrInvalidKeyLength)
}

func TestHashVerifySecret(t *testing.T) {
	svc := vault.NewService()

	hash, salt, err := svc.HashSecret("master-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.Len(t, salt, 64) // 32 bytes hex encoded
	assert.NotContains(t, hash, "master-secret")

	assert.True(t, svc.VerifySecret("master-secret", hash))
	assert.False(t, svc.VerifySecret("wrong-secret", hash))
}

func TestGenerateMasterSecret(t *testing.T) {
	svc := vault.NewService()

	s1, err := svc.GenerateMasterSecret()
	require.NoError(t, err)
	s2, err := svc.GenerateMasterSecret()
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)

	raw, err := base64.URLEncoding.DecodeString(s1)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}
