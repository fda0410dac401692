package audit

import "strings"

const redactedPlaceholder = "[REDACTED]"

// 任何键名包含这些子串的字段都会被整体替换，嵌套结构递归处理
var sensitiveFragments = []string{
	"api_key",
	"apikey",
	"master_key",
	"password",
	"token",
	"secret",
	"authorization",
	"ciphertext",
}

// Redact 返回脱敏后的副本；输入不被修改
func Redact(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	redacted := make(map[string]interface{}, len(details))
	for key, value := range details {
		if isSensitiveKey(key) {
			redacted[key] = redactedPlaceholder
			continue
		}
		redacted[key] = redactValue(value)
	}
	return redacted
}

func redactValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return Redact(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = redactValue(item)
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	lowered := strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(lowered, fragment) {
			return true
		}
	}
	return false
}
