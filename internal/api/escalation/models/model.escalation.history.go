package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcomes của một lần bắn escalation
const (
	OutcomeSent       = "sent"
	OutcomeFailed     = "failed"
	OutcomeSuppressed = "suppressed"
)

// EscalationHistory - một bản ghi bắn escalation trong ledger append-only.
// Ledger là nguồn sự thật duy nhất cho deduplication: unique index (dedupKey, attempt)
// chặn double-firing ở tầng database kể cả khi hai evaluator chạy song song.
type EscalationHistory struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RuleID       primitive.ObjectID `json:"ruleId" bson:"ruleId"`
	ActionID     primitive.ObjectID `json:"actionId" bson:"actionId"`
	ItemCategory string             `json:"itemCategory" bson:"itemCategory"`
	ItemID       primitive.ObjectID `json:"itemId" bson:"itemId"`
	RecipientID  string             `json:"recipientId" bson:"recipientId"`
	Channel      string             `json:"channel" bson:"channel"`
	Level        int                `json:"level" bson:"level"`
	// DedupKey = sha256(ruleId|itemId|recipientId|channel|level)
	DedupKey string `json:"dedupKey" bson:"dedupKey"`
	// Attempt bắt đầu từ 1, tăng dần theo mỗi lần retry cho cùng dedupKey
	Attempt       int    `json:"attempt" bson:"attempt"`
	Outcome       string `json:"outcome" bson:"outcome"`
	FailureReason string `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	FiredAt       int64  `json:"firedAt" bson:"firedAt"`
	CreatedAt     int64  `json:"createdAt" bson:"createdAt"`
	UpdatedAt     int64  `json:"updatedAt" bson:"updatedAt"`
}

// IsTerminal cho biết bản ghi này đã kết thúc vòng đời của dedupKey chưa.
// Sent và Suppressed là terminal; Failed còn có thể retry.
func (h *EscalationHistory) IsTerminal() bool {
	return h.Outcome == OutcomeSent || h.Outcome == OutcomeSuppressed
}
