// Package notifhdl xử lý các HTTP request thuộc domain Notification.
package notifhdl

import (
	"fmt"

	basehdl "hsse_platform/internal/api/base/handler"
	notifsvc "hsse_platform/internal/api/notification/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
)

// NotificationTemplateHandler xử lý tra cứu Notification Template.
type NotificationTemplateHandler struct {
	templateService *notifsvc.NotificationTemplateService
}

// NewNotificationTemplateHandler tạo mới NotificationTemplateHandler
func NewNotificationTemplateHandler() (*NotificationTemplateHandler, error) {
	templateService, err := notifsvc.NewNotificationTemplateService()
	if err != nil {
		return nil, fmt.Errorf("failed to create notification template service: %v", err)
	}

	return &NotificationTemplateHandler{templateService: templateService}, nil
}

// HandleListTemplates trả về danh sách template (phân trang, lọc theo key/language).
func (h *NotificationTemplateHandler) HandleListTemplates(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		page := fiber.Query[int64](c, "page", 1)
		limit := fiber.Query[int64](c, "limit", 20)

		filter := bson.M{}
		if key := c.Query("templateKey"); key != "" {
			filter["templateKey"] = key
		}
		if language := c.Query("language"); language != "" {
			filter["language"] = language
		}

		result, err := h.templateService.FindWithPagination(c.Context(), filter, page, limit, nil)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}
