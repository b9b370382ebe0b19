// Package escalation chứa evaluator: bộ não quyết định escalation nào phải bắn ngay bây giờ.
package escalation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DedupKey sinh khóa dedup định danh duy nhất cho một tuple
// (rule, item, recipient, channel, level). Khóa là deterministic:
// cùng tuple luôn sinh cùng key bất kể instance hay thời điểm.
func DedupKey(ruleID, itemID, recipientID, channel string, level int) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%d", ruleID, itemID, recipientID, channel, level)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
