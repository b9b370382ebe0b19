// Package escalation - Test dedup key: deterministic và phân biệt theo từng chiều.
package escalation

import "testing"

func TestDedupKey_Deterministic(t *testing.T) {
	a := DedupKey("rule1", "item1", "user1", "email", 1)
	b := DedupKey("rule1", "item1", "user1", "email", 1)
	if a != b {
		t.Errorf("Cùng input phải cho cùng dedup key: %s != %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Dedup key phải là sha256 hex 64 ký tự, nhận được %d", len(a))
	}
}

func TestDedupKey_DistinctPerDimension(t *testing.T) {
	base := DedupKey("rule1", "item1", "user1", "email", 1)

	variants := map[string]string{
		"rule":    DedupKey("rule2", "item1", "user1", "email", 1),
		"item":    DedupKey("rule1", "item2", "user1", "email", 1),
		"user":    DedupKey("rule1", "item1", "user2", "email", 1),
		"channel": DedupKey("rule1", "item1", "user1", "sms", 1),
		"level":   DedupKey("rule1", "item1", "user1", "email", 2),
	}
	for dimension, key := range variants {
		if key == base {
			t.Errorf("Đổi %s phải cho dedup key khác", dimension)
		}
	}
}
