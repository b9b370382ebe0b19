// Package eschdl xử lý các HTTP request thuộc domain Escalation.
package eschdl

import (
	"fmt"
	"time"

	basehdl "hsse_platform/internal/api/base/handler"
	escdto "hsse_platform/internal/api/escalation/dto"
	escsvc "hsse_platform/internal/api/escalation/service"
	"hsse_platform/internal/common"
	"hsse_platform/internal/escalation"
	"hsse_platform/internal/global"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EscalationHandler xử lý trigger thủ công và tra cứu rules/history.
type EscalationHandler struct {
	evaluator      *escalation.Evaluator
	ruleService    *escsvc.EscalationRuleService
	historyService *escsvc.EscalationHistoryService
}

// NewEscalationHandler tạo mới EscalationHandler
func NewEscalationHandler(evaluator *escalation.Evaluator) (*EscalationHandler, error) {
	ruleService, err := escsvc.NewEscalationRuleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create escalation rule service: %v", err)
	}
	historyService, err := escsvc.NewEscalationHistoryService()
	if err != nil {
		return nil, fmt.Errorf("failed to create escalation history service: %v", err)
	}

	return &EscalationHandler{
		evaluator:      evaluator,
		ruleService:    ruleService,
		historyService: historyService,
	}, nil
}

// HandleTrigger chạy một chu kỳ đánh giá ngay lập tức (operational testing).
// Chịu cùng single-flight discipline với scheduled trigger: nếu một cycle khác
// đang chạy, trả về 409 với ErrCycleInFlight.
func (h *EscalationHandler) HandleTrigger(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		asOf := time.Now()
		if len(c.Body()) > 0 {
			var input escdto.TriggerInput
			if err := c.Bind().Body(&input); err != nil {
				basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
				return nil
			}
			if input.AsOf > 0 {
				asOf = time.UnixMilli(input.AsOf)
			}
		}

		summary, err := h.evaluator.RunEvaluationCycle(c.Context(), asOf)
		basehdl.HandleResponse(c, summary, err)
		return nil
	})
}

// HandleListRules trả về danh sách escalation rules (phân trang).
func (h *EscalationHandler) HandleListRules(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		page := fiber.Query[int64](c, "page", 1)
		limit := fiber.Query[int64](c, "limit", 20)

		result, err := h.ruleService.FindWithPagination(c.Context(), bson.D{}, page, limit, nil)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}

// HandleListHistory tra cứu ledger (phân trang, mới nhất trước).
// Filter theo outcome/ruleId/itemId/dedupKey; các entry suppressed là tín hiệu
// cần can thiệp thủ công cho dashboard vận hành.
func (h *EscalationHandler) HandleListHistory(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		var query escdto.HistoryQuery
		if err := c.Bind().Query(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
			return nil
		}
		if err := global.Validate.Struct(&query); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
			return nil
		}
		if query.Page < 1 {
			query.Page = 1
		}
		if query.Limit <= 0 {
			query.Limit = 20
		}

		filter := bson.M{}
		if query.Outcome != "" {
			filter["outcome"] = query.Outcome
		}
		if query.DedupKey != "" {
			filter["dedupKey"] = query.DedupKey
		}
		if query.RuleID != "" {
			ruleID, err := primitive.ObjectIDFromHex(query.RuleID)
			if err != nil {
				basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
				return nil
			}
			filter["ruleId"] = ruleID
		}
		if query.ItemID != "" {
			itemID, err := primitive.ObjectIDFromHex(query.ItemID)
			if err != nil {
				basehdl.HandleResponse(c, nil, common.ErrInvalidFormat)
				return nil
			}
			filter["itemId"] = itemID
		}

		opts := options.Find().SetSort(bson.D{{Key: "firedAt", Value: -1}})
		result, err := h.historyService.FindWithPagination(c.Context(), filter, query.Page, query.Limit, opts)
		basehdl.HandleResponse(c, result, err)
		return nil
	})
}
