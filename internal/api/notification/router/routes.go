// Package router đăng ký các route thuộc domain Notification: Template.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"hsse_platform/internal/api/middleware"
	notifhdl "hsse_platform/internal/api/notification/handler"
)

// Register đăng ký tất cả route notification lên v1.
func Register(v1 fiber.Router) error {
	templateHandler, err := notifhdl.NewNotificationTemplateHandler()
	if err != nil {
		return fmt.Errorf("create notification template handler: %w", err)
	}

	group := v1.Group("/notification")
	group.Use(middleware.AuthMiddleware())

	group.Get("/templates", templateHandler.HandleListTemplates)
	return nil
}
