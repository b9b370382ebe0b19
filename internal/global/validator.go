package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	// Khởi tạo validator
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("channel_type", validateChannelType)
	_ = Validate.RegisterValidation("severity", validateSeverity)
	_ = Validate.RegisterValidation("item_category", validateItemCategory)
}

// validateNoXSS kiểm tra XSS trong các field text tự do
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"<iframe",
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateChannelType kiểm tra channel type hợp lệ (email, sms, whatsapp, push)
func validateChannelType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "email", "sms", "whatsapp", "push":
		return true
	}
	return false
}

// validateSeverity kiểm tra severity hợp lệ
func validateSeverity(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "critical", "high", "medium", "low":
		return true
	}
	return false
}

// validateItemCategory kiểm tra category của open item
func validateItemCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "incident", "hazard":
		return true
	}
	return false
}
