// Package models - EscalationRule, EscalationAction, EscalationHistory thuộc domain Escalation.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trigger kinds - điều kiện thời gian khiến một rule khớp với open item.
const (
	TriggerTimeSinceCreatedWithoutAck = "TimeSinceCreatedWithoutAcknowledgement"
	TriggerTimeSinceStatusChange      = "TimeSinceStatusChange"
	TriggerSeverityThresholdUnaddr    = "SeverityThresholdUnaddressed"
)

// Item categories - loại open item mà rule áp dụng.
const (
	CategoryIncident = "incident"
	CategoryHazard   = "hazard"
)

// Severities
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// EscalationRule - điều kiện khiến escalation được kích hoạt.
// Rules do quản trị viên cấu hình; engine chỉ đọc.
type EscalationRule struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name" validate:"required,no_xss"`
	Category         string             `json:"category" bson:"category" validate:"required,item_category"`
	TriggerKind      string             `json:"triggerKind" bson:"triggerKind" validate:"required"`
	ThresholdSeconds int64              `json:"thresholdSeconds" bson:"thresholdSeconds" validate:"required,gt=0"`
	// Severities rỗng nghĩa là áp dụng cho mọi severity
	Severities []string `json:"severities" bson:"severities" validate:"dive,severity"`
	IsActive   bool     `json:"isActive" bson:"isActive"`
	Priority   int      `json:"priority" bson:"priority"`
	CreatedAt  int64    `json:"createdAt" bson:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt" bson:"updatedAt"`
}

// MatchesSeverity kiểm tra severity của item có nằm trong phạm vi của rule không.
// Danh sách severities rỗng nghĩa là khớp tất cả.
func (r *EscalationRule) MatchesSeverity(severity string) bool {
	if len(r.Severities) == 0 {
		return true
	}
	for _, s := range r.Severities {
		if s == severity {
			return true
		}
	}
	return false
}
