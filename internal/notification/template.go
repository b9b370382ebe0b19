// Package notification chứa logic render template thông báo đa channel.
package notification

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	notifmodels "hsse_platform/internal/api/notification/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/logger"
	"hsse_platform/internal/notification/channels"

	"github.com/sirupsen/logrus"
)

// placeholderPattern khớp mọi placeholder dạng {{field}} còn sót lại sau khi render
var placeholderPattern = regexp.MustCompile(`\{\{[a-zA-Z0-9_.]+\}\}`)

// MissingFieldError báo data thiếu các field bắt buộc của template.
// Render fail closed: không bao giờ gửi nội dung thiếu dữ liệu.
type MissingFieldError struct {
	TemplateKey string
	Fields      []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("template %s thiếu các field bắt buộc: %s", e.TemplateKey, strings.Join(e.Fields, ", "))
}

// TemplateSource là nguồn đọc template theo (key, language).
type TemplateSource interface {
	FindByKeyAndLanguage(ctx context.Context, templateKey, language string) (notifmodels.NotificationTemplate, error)
}

// Resolver tìm và render template thông báo.
// Render là hàm thuần trên (template, data): không side effect ngoài log warning,
// an toàn gọi song song và lặp lại với cùng input.
type Resolver struct {
	source          TemplateSource
	defaultLanguage string
}

// NewResolver tạo mới Resolver
func NewResolver(source TemplateSource, defaultLanguage string) *Resolver {
	return &Resolver{
		source:          source,
		defaultLanguage: defaultLanguage,
	}
}

// Render tìm template theo (templateKey, language) rồi render với data.
// Logic: tìm đúng language trước, nếu không có → fallback về default language.
// Trả về common.ErrTemplateNotFound nếu cả hai đều không có.
func (r *Resolver) Render(ctx context.Context, templateKey, language string, data map[string]interface{}) (*channels.RenderedContent, error) {
	if language == "" {
		language = r.defaultLanguage
	}

	template, err := r.source.FindByKeyAndLanguage(ctx, templateKey, language)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("failed to find template %s (%s): %w", templateKey, language, err)
		}
		if language == r.defaultLanguage {
			return nil, common.ErrTemplateNotFound
		}
		// Fallback về default language
		template, err = r.source.FindByKeyAndLanguage(ctx, templateKey, r.defaultLanguage)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrTemplateNotFound
			}
			return nil, fmt.Errorf("failed to find fallback template %s (%s): %w", templateKey, r.defaultLanguage, err)
		}
	}

	// Validate tất cả required fields có mặt trong data - fail closed nếu thiếu.
	// Named parameter của WhatsApp template cũng bắt buộc như required field.
	var missing []string
	reported := make(map[string]bool)
	for _, field := range template.RequiredFields {
		if _, exists := data[field]; !exists && !reported[field] {
			missing = append(missing, field)
			reported[field] = true
		}
	}
	for _, field := range template.WhatsappTemplateParams {
		if _, exists := data[field]; !exists && !reported[field] {
			missing = append(missing, field)
			reported[field] = true
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingFieldError{TemplateKey: templateKey, Fields: missing}
	}

	rendered := &channels.RenderedContent{
		Subject:      r.renderBody(template.Subject, data),
		EmailBody:    r.renderBody(template.EmailBody, data),
		SmsBody:      r.renderBody(template.SmsBody, data),
		WhatsappBody: r.renderBody(template.WhatsappBody, data),
		PushTitle:    r.renderBody(template.PushTitle, data),
		PushBody:     r.renderBody(template.PushBody, data),
	}

	// WhatsApp dùng nội dung SMS nếu không có body riêng
	if rendered.WhatsappBody == "" {
		rendered.WhatsappBody = rendered.SmsBody
	}

	// Template đã duyệt của Meta: named parameter lấy giá trị trực tiếp từ data
	if template.WhatsappTemplateName != "" {
		wt := &channels.WhatsAppTemplate{
			Name:     template.WhatsappTemplateName,
			Language: template.Language,
		}
		for _, name := range template.WhatsappTemplateParams {
			wt.Parameters = append(wt.Parameters, channels.WhatsAppTemplateParam{
				Name:  name,
				Value: fmt.Sprintf("%v", data[name]),
			})
		}
		rendered.WhatsappTemplate = wt
	}

	if template.WhatsappMediaKind != "" {
		rendered.WhatsappMedia = &channels.WhatsAppMedia{
			Kind:     template.WhatsappMediaKind,
			URL:      template.WhatsappMediaURL,
			Caption:  r.renderBody(template.WhatsappMediaCaption, data),
			Filename: template.WhatsappMediaFilename,
		}
	}

	// Placeholder không có data key tương ứng được giữ nguyên dạng literal,
	// chỉ log warning (policy có thể khôi phục, không phải lỗi)
	leftover := collectLeftoverPlaceholders(rendered)
	if len(leftover) > 0 {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"templateKey":  templateKey,
			"language":     template.Language,
			"placeholders": leftover,
		}).Warn("⚠️ [TEMPLATE] Placeholder không có data key, giữ nguyên dạng literal")
	}

	return rendered, nil
}

// renderBody thay thế các placeholder {{field}} bằng giá trị từ data.
func (r *Resolver) renderBody(body string, data map[string]interface{}) string {
	if body == "" {
		return ""
	}
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		body = strings.ReplaceAll(body, placeholder, fmt.Sprintf("%v", value))
	}
	return body
}

// collectLeftoverPlaceholders tìm các placeholder còn sót lại trong mọi biến thể nội dung.
func collectLeftoverPlaceholders(rendered *channels.RenderedContent) []string {
	seen := make(map[string]bool)
	var leftover []string
	for _, body := range []string{
		rendered.Subject,
		rendered.EmailBody,
		rendered.SmsBody,
		rendered.WhatsappBody,
		rendered.PushTitle,
		rendered.PushBody,
	} {
		for _, match := range placeholderPattern.FindAllString(body, -1) {
			if !seen[match] {
				seen[match] = true
				leftover = append(leftover, match)
			}
		}
	}
	sort.Strings(leftover)
	return leftover
}
