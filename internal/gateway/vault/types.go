package vault

// Ciphertext 认证加密输出
// 密文、认证标签和 nonce 三个值独立存储（便于与存储后端无关的篡改检测）
type Ciphertext struct {
	Ciphertext string // base64
	Tag        string // base64，128 位 GCM 标签
	Nonce      string // base64，96 位
}
