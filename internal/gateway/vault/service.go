package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrInvalidKeyLength = errors.New("tenant key must be 32 bytes")
	ErrIntegrity        = errors.New("ciphertext integrity check failed")
	ErrMalformedInput   = errors.New("malformed ciphertext component")
)

const (
	keyLength   = 32
	nonceLength = 12
	tagLength   = 16
	saltLength  = 32
	bcryptCost  = 12

	// HKDF info 前缀，租户隔离的上下文字符串
	kdfInfoPrefix = "orderdesk-gateway-tenant-"
)

// Service 凭证保险库服务接口
// 派生每租户加密密钥，加解密第三方凭证，校验租户主密钥
type Service interface {
	DeriveTenantKey(masterSecret, salt string) ([]byte, error)
	Encrypt(plaintext string, key []byte) (*Ciphertext, error)
	Decrypt(ct *Ciphertext, key []byte) (string, error)
	HashSecret(secret string) (hash string, salt string, err error)
	VerifySecret(secret, hash string) bool
	GenerateSalt() (string, error)
	GenerateMasterSecret() (string, error)
}

// service 凭证保险库实现
type service struct {
	pepper []byte
}

// NewService 创建新的保险库服务
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewService() Service {
	return &service{}
}

// NewServiceWithPepper 创建带服务端根 pepper 的保险库服务
// pepper 参与密钥派生：泄露数据库不足以离线爆破租户密钥
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewServiceWithPepper(pepper []byte) Service {
	return &service{pepper: pepper}
}

// DeriveTenantKey 使用 HKDF-SHA256 派生每租户 32 字节密钥
// 相同的 (masterSecret, salt) 总是得到相同的密钥；不同 salt 得到不同密钥
func (s *service) DeriveTenantKey(masterSecret, salt string) ([]byte, error) {
	if masterSecret == "" {
		return nil, errors.New("master secret must not be empty")
	}
	if salt == "" {
		return nil, errors.New("salt must not be empty")
	}

	info := []byte(kdfInfoPrefix + salt)
	ikm := append(append([]byte{}, s.pepper...), []byte(masterSecret)...)
	reader := hkdf.New(sha256.New, ikm, []byte(salt), info)

	key := make([]byte, keyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.Wrap(err, "failed to derive tenant key")
	}

	return key, nil
}

// Encrypt 使用 AES-256-GCM 加密
// 每次调用生成全新随机 nonce；密文、标签、nonce 分别返回
func (s *service) Encrypt(plaintext string, key []byte) (*Ciphertext, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "failed to generate nonce")
	}

	// Seal 的输出是 ciphertext||tag，拆开独立存储
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	boundary := len(sealed) - tagLength

	return &Ciphertext{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:boundary]),
		Tag:        base64.StdEncoding.EncodeToString(sealed[boundary:]),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
	}, nil
}

// Decrypt 使用 AES-256-GCM 解密并校验标签
// 标签校验失败返回 ErrIntegrity（表示数据被篡改或密钥错误），与"不存在"和"格式错误"可区分
func (s *service) Decrypt(ct *Ciphertext, key []byte) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ct.Ciphertext)
	if err != nil {
		return "", errors.Wrap(ErrMalformedInput, "ciphertext is not valid base64")
	}
	tag, err := base64.StdEncoding.DecodeString(ct.Tag)
	if err != nil {
		return "", errors.Wrap(ErrMalformedInput, "tag is not valid base64")
	}
	nonce, err := base64.StdEncoding.DecodeString(ct.Nonce)
	if err != nil {
		return "", errors.Wrap(ErrMalformedInput, "nonce is not valid base64")
	}
	if len(tag) != tagLength {
		return "", errors.Wrapf(ErrMalformedInput, "tag must be %d bytes", tagLength)
	}
	if len(nonce) != nonceLength {
		return "", errors.Wrapf(ErrMalformedInput, "nonce must be %d bytes", nonceLength)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrIntegrity
	}

	return string(plaintext), nil
}

// HashSecret 使用 bcrypt 哈希主密钥，同时生成用于 HKDF 的独立随机 salt
func (s *service) HashSecret(secret string) (string, string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to hash secret")
	}

	salt, err := s.GenerateSalt()
	if err != nil {
		return "", "", err
	}

	return string(hashed), salt, nil
}

// VerifySecret 常数时间校验主密钥
func (s *service) VerifySecret(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// GenerateSalt 生成 HKDF 派生用随机 salt
func (s *service) GenerateSalt() (string, error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to generate salt")
	}
	return hex.EncodeToString(raw), nil
}

// GenerateMasterSecret 生成加密安全的主密钥（用于自动开通）
func (s *service) GenerateMasterSecret() (string, error) {
	raw := make([]byte, keyLength)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to generate master secret")
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// newAEAD 密钥长度错误属于编程错误，立即失败且不重试
func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != keyLength {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GCM")
	}

	return aead, nil
}
