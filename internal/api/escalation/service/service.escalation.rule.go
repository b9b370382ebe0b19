// Package escsvc chứa các service cho domain Escalation (rule, action, history ledger, open item).
package escsvc

import (
	"context"
	"fmt"

	basesvc "hsse_platform/internal/api/base/service"
	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EscalationRuleService là cấu trúc chứa các phương thức liên quan đến Escalation Rule.
// Rules do quản trị viên cấu hình; evaluator chỉ đọc qua service này.
type EscalationRuleService struct {
	*basesvc.BaseServiceMongoImpl[escmodels.EscalationRule]
}

// NewEscalationRuleService tạo mới EscalationRuleService
func NewEscalationRuleService() (*EscalationRuleService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.EscalationRules)
	if !exist {
		return nil, fmt.Errorf("failed to get escalation_rules collection: %v", common.ErrNotFound)
	}

	return &EscalationRuleService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[escmodels.EscalationRule](collection),
	}, nil
}

// FindActiveRules trả về tất cả rules đang bật, sắp xếp theo priority tăng dần.
func (s *EscalationRuleService) FindActiveRules(ctx context.Context) ([]escmodels.EscalationRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	return s.Find(ctx, bson.M{"isActive": true}, opts)
}
