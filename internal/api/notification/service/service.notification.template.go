// Package notifsvc chứa các service cho domain Notification (template, sender).
package notifsvc

import (
	"context"
	"fmt"

	basesvc "hsse_platform/internal/api/base/service"
	notifmodels "hsse_platform/internal/api/notification/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/global"

	"go.mongodb.org/mongo-driver/bson"
)

// NotificationTemplateService là cấu trúc chứa các phương thức liên quan đến Notification Template
type NotificationTemplateService struct {
	*basesvc.BaseServiceMongoImpl[notifmodels.NotificationTemplate]
}

// NewNotificationTemplateService tạo mới NotificationTemplateService
func NewNotificationTemplateService() (*NotificationTemplateService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.NotificationTemplates)
	if !exist {
		return nil, fmt.Errorf("failed to get notification_templates collection: %v", common.ErrNotFound)
	}

	return &NotificationTemplateService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[notifmodels.NotificationTemplate](collection),
	}, nil
}

// FindByKeyAndLanguage tìm template active theo (templateKey, language).
// Trả về common.ErrNotFound nếu không có bản ghi cho ngôn ngữ đó.
func (s *NotificationTemplateService) FindByKeyAndLanguage(ctx context.Context, templateKey, language string) (notifmodels.NotificationTemplate, error) {
	return s.FindOne(ctx, bson.M{
		"templateKey": templateKey,
		"language":    language,
		"isActive":    true,
	}, nil)
}
