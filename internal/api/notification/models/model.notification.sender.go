package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationSender - cấu hình provider cho một channel (email/sms/whatsapp/push).
// Mỗi channel có tối đa một sender active; evaluator tra sender theo channel khi dispatch.
type NotificationSender struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name" validate:"required"`
	ChannelType string             `json:"channelType" bson:"channelType" validate:"required,channel_type"`
	IsActive    bool               `json:"isActive" bson:"isActive"`

	// Email (SMTP)
	SmtpHost     string `json:"smtpHost,omitempty" bson:"smtpHost,omitempty"`
	SmtpPort     int    `json:"smtpPort,omitempty" bson:"smtpPort,omitempty"`
	SmtpUsername string `json:"smtpUsername,omitempty" bson:"smtpUsername,omitempty"`
	SmtpPassword string `json:"-" bson:"smtpPassword,omitempty"`
	FromAddress  string `json:"fromAddress,omitempty" bson:"fromAddress,omitempty"`
	FromName     string `json:"fromName,omitempty" bson:"fromName,omitempty"`

	// SMS (HTTP provider)
	ApiURL   string `json:"apiUrl,omitempty" bson:"apiUrl,omitempty"`
	ApiKey   string `json:"-" bson:"apiKey,omitempty"`
	SenderID string `json:"senderId,omitempty" bson:"senderId,omitempty"`

	// WhatsApp (Cloud API)
	PhoneNumberID string `json:"phoneNumberId,omitempty" bson:"phoneNumberId,omitempty"`
	AccessToken   string `json:"-" bson:"accessToken,omitempty"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
