package escsvc

import (
	"context"
	"fmt"

	basesvc "hsse_platform/internal/api/base/service"
	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/global"

	"go.mongodb.org/mongo-driver/bson"
)

// Các status terminal: item ở trạng thái này không còn là candidate cho escalation.
var terminalStatuses = []string{"closed", "resolved", "cancelled"}

// OpenItemService đọc candidate open items (incident, hazard) cho evaluator.
// Các collection HSSE do module nghiệp vụ sở hữu; service này chỉ đọc.
type OpenItemService struct {
	incidents *basesvc.BaseServiceMongoImpl[escmodels.ItemSummary]
	hazards   *basesvc.BaseServiceMongoImpl[escmodels.ItemSummary]
}

// NewOpenItemService tạo mới OpenItemService
func NewOpenItemService() (*OpenItemService, error) {
	incidentCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Incidents)
	if !exist {
		return nil, fmt.Errorf("failed to get hsse_incidents collection: %v", common.ErrNotFound)
	}
	hazardCol, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Hazards)
	if !exist {
		return nil, fmt.Errorf("failed to get hsse_hazards collection: %v", common.ErrNotFound)
	}

	return &OpenItemService{
		incidents: basesvc.NewBaseServiceMongo[escmodels.ItemSummary](incidentCol),
		hazards:   basesvc.NewBaseServiceMongo[escmodels.ItemSummary](hazardCol),
	}, nil
}

// FindOpenItems trả về các item chưa terminal của một category.
// Category của item được gán lại từ tham số vì các collection HSSE không lưu field này.
func (s *OpenItemService) FindOpenItems(ctx context.Context, category string) ([]escmodels.ItemSummary, error) {
	var svc *basesvc.BaseServiceMongoImpl[escmodels.ItemSummary]
	switch category {
	case escmodels.CategoryIncident:
		svc = s.incidents
	case escmodels.CategoryHazard:
		svc = s.hazards
	default:
		return nil, common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Category không hợp lệ: %s", category),
			common.StatusBadRequest,
			nil,
		)
	}

	items, err := svc.Find(ctx, bson.M{"status": bson.M{"$nin": terminalStatuses}}, nil)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Category = category
	}
	return items, nil
}
