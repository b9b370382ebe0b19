package escsvc

import (
	"context"
	"fmt"

	basesvc "hsse_platform/internal/api/base/service"
	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EscalationActionService là cấu trúc chứa các phương thức liên quan đến Escalation Action
type EscalationActionService struct {
	*basesvc.BaseServiceMongoImpl[escmodels.EscalationAction]
}

// NewEscalationActionService tạo mới EscalationActionService
func NewEscalationActionService() (*EscalationActionService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.EscalationActions)
	if !exist {
		return nil, fmt.Errorf("failed to get escalation_actions collection: %v", common.ErrNotFound)
	}

	return &EscalationActionService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[escmodels.EscalationAction](collection),
	}, nil
}

// FindByRule trả về các action của một rule theo level tăng dần.
// Evaluator dựa vào thứ tự này để enforce sequential escalation.
func (s *EscalationActionService) FindByRule(ctx context.Context, ruleID primitive.ObjectID) ([]escmodels.EscalationAction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "level", Value: 1}})
	return s.Find(ctx, bson.M{"ruleId": ruleID}, opts)
}
