package mutation_test

import (
	"testing"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/mutation"
	"github.com/stretchr/testify/assert"
)

func TestMerge_ChangedFieldsReplace(t *testing.T) {
	current := map[string]interface{}{"email": "old@example.com", "shipping_method": "ground"}
	changeset := map[string]interface{}{"email": "new@example.com"}

	merged := mutation.Merge(current, changeset)

	assert.Equal(t, "new@example.com", merged["email"])
	assert.Equal(t, "ground", merged["shipping_method"])
}

func TestMerge_ExplicitNilRemovesField(t *testing.T) {
	current := map[string]interface{}{"email": "old@example.com", "coupon_code": "SAVE10"}
	changeset := map[string]interface{}{"coupon_code": nil}

	merged := mutation.Merge(current, changeset)

	assert.NotContains(t, merged, "coupon_code")
	assert.Equal(t, "old@example.com", merged["email"])
}

func TestMerge_ListFieldsReplaceEntirely(t *testing.T) {
	current := map[string]interface{}{
		"order_items": []interface{}{map[string]interface{}{"code": "A"}},
	}
	changeset := map[string]interface{}{
		"order_items": []interface{}{map[string]interface{}{"code": "B"}},
	}

	merged := mutation.Merge(current, changeset)

	assert.Equal(t, changeset["order_items"], merged["order_items"])
}

func TestMerge_NotesAppendWithDedup(t *testing.T) {
	current := map[string]interface{}{
		"notes": []interface{}{"Gift wrap"},
	}
	changeset := map[string]interface{}{
		"notes": []interface{}{"  gift WRAP  ", "Expedite shipping"},
	}

	merged := mutation.Merge(current, changeset)

	// 大小写和首尾空白不同视为同一条备注，保留先出现的
	assert.Equal(t, []interface{}{"Gift wrap", "Expedite shipping"}, merged["notes"])
}

func TestMerge_NotesDedupAcrossObjectEntries(t *testing.T) {
	current := map[string]interface{}{
		"notes": []interface{}{
			map[string]interface{}{"note": "Call before delivery"},
		},
	}
	changeset := map[string]interface{}{
		"notes": []interface{}{
			"call before delivery",
			map[string]interface{}{"content": "Leave at door"},
		},
	}

	merged := mutation.Merge(current, changeset)

	notes, ok := merged["notes"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, notes, 2)
	assert.Equal(t, map[string]interface{}{"note": "Call before delivery"}, notes[0])
	assert.Equal(t, map[string]interface{}{"content": "Leave at door"}, notes[1])
}

func TestMerge_NotesIntoOrderWithoutNotes(t *testing.T) {
	current := map[string]interface{}{"email": "a@example.com"}
	changeset := map[string]interface{}{"notes": []interface{}{"First note"}}

	merged := mutation.Merge(current, changeset)

	assert.Equal(t, []interface{}{"First note"}, merged["notes"])
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	current := map[string]interface{}{"email": "old@example.com"}
	changeset := map[string]interface{}{"email": "new@example.com"}

	_ = mutation.Merge(current, changeset)

	assert.Equal(t, "old@example.com", current["email"])
}
