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

// NotificationSenderService là cấu trúc chứa các phương thức liên quan đến Notification Sender
type NotificationSenderService struct {
	*basesvc.BaseServiceMongoImpl[notifmodels.NotificationSender]
}

// NewNotificationSenderService tạo mới NotificationSenderService
func NewNotificationSenderService() (*NotificationSenderService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.NotificationSenders)
	if !exist {
		return nil, fmt.Errorf("failed to get notification_senders collection: %v", common.ErrNotFound)
	}

	return &NotificationSenderService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[notifmodels.NotificationSender](collection),
	}, nil
}

// FindActiveByChannel tìm sender đang active cho một channel.
func (s *NotificationSenderService) FindActiveByChannel(ctx context.Context, channelType string) (notifmodels.NotificationSender, error) {
	return s.FindOne(ctx, bson.M{
		"channelType": channelType,
		"isActive":    true,
	}, nil)
}
