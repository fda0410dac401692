package mutation

import "strings"

// Merge 把变更集合并到当前上游状态，返回可直接推送的完整文档
// 规则：变更字段整体覆盖；显式 null 删除字段；notes 追加去重，其余列表整体替换
func Merge(current map[string]interface{}, changeset map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(current)+len(changeset))
	for k, v := range current {
		merged[k] = v
	}

	for k, v := range changeset {
		if v == nil {
			delete(merged, k)
			continue
		}
		if k == "notes" {
			merged[k] = mergeNotes(asList(current[k]), asList(v))
			continue
		}
		merged[k] = v
	}
	return merged
}

// mergeNotes 备注只增不减：新备注追加到已有备注之后
// 文本去重忽略大小写和首尾空白，保留先出现的条目
func mergeNotes(existing, incoming []interface{}) []interface{} {
	seen := make(map[string]struct{}, len(existing))
	result := make([]interface{}, 0, len(existing)+len(incoming))

	for _, note := range existing {
		result = append(result, note)
		if text, ok := noteText(note); ok {
			seen[normalizeNote(text)] = struct{}{}
		}
	}

	for _, note := range incoming {
		text, ok := noteText(note)
		if !ok {
			result = append(result, note)
			continue
		}
		key := normalizeNote(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, note)
	}
	return result
}

// noteText 提取备注的可比较文本；条目可以是纯字符串或带 note/content 字段的对象
func noteText(note interface{}) (string, bool) {
	switch v := note.(type) {
	case string:
		return v, true
	case map[string]interface{}:
		if text, ok := v["note"].(string); ok {
			return text, true
		}
		if text, ok := v["content"].(string); ok {
			return text, true
		}
	}
	return "", false
}

func normalizeNote(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func asList(v interface{}) []interface{} {
	list, _ := v.([]interface{})
	return list
}
