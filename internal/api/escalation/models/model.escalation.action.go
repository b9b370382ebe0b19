package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recipient resolution strategies
const (
	StrategyDirectUser     = "DirectUser"
	StrategyRoleGroup      = "RoleGroup"
	StrategySupervisor     = "Supervisor"
	StrategyDepartmentHead = "DepartmentHead"
)

// Channel types
const (
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
	ChannelPush     = "push"
)

// EscalationAction - hành động cụ thể khi rule khớp: ai nhận, qua channel nào, nội dung gì.
// Các action của một rule xếp theo level tăng dần liên tục từ 1 (không có khoảng trống).
type EscalationAction struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RuleID            primitive.ObjectID `json:"ruleId" bson:"ruleId" validate:"required"`
	Level             int                `json:"level" bson:"level" validate:"required,gte=1"`
	RecipientStrategy string             `json:"recipientStrategy" bson:"recipientStrategy" validate:"required"`
	// TargetRef là user id (DirectUser) hoặc tên role (RoleGroup); rỗng với Supervisor/DepartmentHead
	TargetRef   string   `json:"targetRef,omitempty" bson:"targetRef,omitempty"`
	Channels    []string `json:"channels" bson:"channels" validate:"required,min=1,dive,channel_type"`
	TemplateKey string   `json:"templateKey" bson:"templateKey" validate:"required"`
	// CcEmails nhận bản sao qua channel email, ngoài recipient chính
	CcEmails []string `json:"ccEmails,omitempty" bson:"ccEmails,omitempty" validate:"omitempty,dive,email"`
	// MaxAttempts override số lần retry cho riêng action này; 0 = dùng giá trị cấu hình chung
	MaxAttempts int   `json:"maxAttempts,omitempty" bson:"maxAttempts,omitempty" validate:"omitempty,gte=0"`
	CreatedAt   int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt   int64 `json:"updatedAt" bson:"updatedAt"`
}
