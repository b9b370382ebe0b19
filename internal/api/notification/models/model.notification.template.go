// Package models - NotificationTemplate, NotificationSender thuộc domain Notification.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationTemplate - blueprint nội dung thông báo theo ngôn ngữ.
// Một templateKey có thể có nhiều bản ghi, mỗi bản ghi một language.
// Mọi placeholder {{field}} xuất hiện trong body phải nằm trong RequiredFields;
// render fail closed nếu data thiếu field bắt buộc.
type NotificationTemplate struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TemplateKey string             `json:"templateKey" bson:"templateKey" validate:"required"`
	Language    string             `json:"language" bson:"language" validate:"required"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	// Nội dung theo channel
	Subject   string `json:"subject,omitempty" bson:"subject,omitempty"`
	EmailBody string `json:"emailBody,omitempty" bson:"emailBody,omitempty"`
	SmsBody   string `json:"smsBody,omitempty" bson:"smsBody,omitempty"`
	// WhatsApp dùng SmsBody nếu WhatsappBody rỗng
	WhatsappBody string `json:"whatsappBody,omitempty" bson:"whatsappBody,omitempty"`
	// WhatsappTemplateName trỏ tới template đã được Meta duyệt; khi có mặt,
	// channel WhatsApp gửi dạng template với named parameter lấy từ data
	// theo danh sách WhatsappTemplateParams thay vì free-form text
	WhatsappTemplateName   string   `json:"whatsappTemplateName,omitempty" bson:"whatsappTemplateName,omitempty"`
	WhatsappTemplateParams []string `json:"whatsappTemplateParams,omitempty" bson:"whatsappTemplateParams,omitempty"`
	// Media đính kèm WhatsApp message: image/video/document với caption.
	// Caption được render như body, Filename chỉ dùng cho document
	WhatsappMediaKind     string   `json:"whatsappMediaKind,omitempty" bson:"whatsappMediaKind,omitempty" validate:"omitempty,oneof=image video document"`
	WhatsappMediaURL      string   `json:"whatsappMediaUrl,omitempty" bson:"whatsappMediaUrl,omitempty" validate:"omitempty,url"`
	WhatsappMediaCaption  string   `json:"whatsappMediaCaption,omitempty" bson:"whatsappMediaCaption,omitempty"`
	WhatsappMediaFilename string   `json:"whatsappMediaFilename,omitempty" bson:"whatsappMediaFilename,omitempty"`
	PushTitle             string   `json:"pushTitle,omitempty" bson:"pushTitle,omitempty"`
	PushBody              string   `json:"pushBody,omitempty" bson:"pushBody,omitempty"`
	RequiredFields []string `json:"requiredFields" bson:"requiredFields"`
	IsActive       bool     `json:"isActive" bson:"isActive"`
	CreatedAt      int64    `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64    `json:"updatedAt" bson:"updatedAt"`
}
