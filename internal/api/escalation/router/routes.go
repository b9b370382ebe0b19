// Package router đăng ký các route thuộc domain Escalation: Trigger, Rules, History.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	eschdl "hsse_platform/internal/api/escalation/handler"
	"hsse_platform/internal/api/middleware"
	"hsse_platform/internal/escalation"
)

// Register đăng ký tất cả route escalation lên v1.
// Toàn bộ route yêu cầu JWT hợp lệ.
func Register(v1 fiber.Router, evaluator *escalation.Evaluator) error {
	handler, err := eschdl.NewEscalationHandler(evaluator)
	if err != nil {
		return fmt.Errorf("create escalation handler: %w", err)
	}

	group := v1.Group("/escalation")
	group.Use(middleware.AuthMiddleware())

	group.Post("/trigger", handler.HandleTrigger)
	group.Get("/rules", handler.HandleListRules)
	group.Get("/history", handler.HandleListHistory)
	return nil
}
