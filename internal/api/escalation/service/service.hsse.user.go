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
)

// HsseUserService đọc người dùng HSSE để resolve recipient.
type HsseUserService struct {
	*basesvc.BaseServiceMongoImpl[escmodels.HsseUser]
}

// NewHsseUserService tạo mới HsseUserService
func NewHsseUserService() (*HsseUserService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get hsse_users collection: %v", common.ErrNotFound)
	}

	return &HsseUserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[escmodels.HsseUser](collection),
	}, nil
}

// FindActiveById tìm user đang active theo id.
func (s *HsseUserService) FindActiveById(ctx context.Context, id primitive.ObjectID) (escmodels.HsseUser, error) {
	return s.FindOne(ctx, bson.M{"_id": id, "isActive": true}, nil)
}

// FindActiveByRole trả về tất cả user active có role chỉ định.
func (s *HsseUserService) FindActiveByRole(ctx context.Context, role string) ([]escmodels.HsseUser, error) {
	return s.Find(ctx, bson.M{"roles": role, "isActive": true}, nil)
}

// HsseDepartmentService đọc bộ phận để resolve DepartmentHead.
type HsseDepartmentService struct {
	*basesvc.BaseServiceMongoImpl[escmodels.HsseDepartment]
}

// NewHsseDepartmentService tạo mới HsseDepartmentService
func NewHsseDepartmentService() (*HsseDepartmentService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Departments)
	if !exist {
		return nil, fmt.Errorf("failed to get hsse_departments collection: %v", common.ErrNotFound)
	}

	return &HsseDepartmentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[escmodels.HsseDepartment](collection),
	}, nil
}
