package channels

import (
	"context"
	"fmt"

	"hsse_platform/internal/logger"

	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
)

// PushSender gửi push notification qua Firebase Cloud Messaging.
// Destination là user đã resolve sẵn device tokens.
type PushSender struct {
	client *messaging.Client
}

// NewPushSender tạo mới PushSender
func NewPushSender(client *messaging.Client) *PushSender {
	return &PushSender{client: client}
}

// ChannelType trả về loại channel
func (s *PushSender) ChannelType() string {
	return "push"
}

// Send gửi push đến tất cả device tokens của destination.
// User không có token nào là Rejected; toàn bộ token unregistered cũng là Rejected
// (device đã gỡ app, retry vô ích). Các lỗi FCM khác là TransientFailure.
func (s *PushSender) Send(ctx context.Context, dest Destination, content *RenderedContent) (Outcome, error) {
	log := logger.GetAppLogger()

	if s.client == nil {
		return OutcomeTransientFailure, fmt.Errorf("firebase messaging client chưa được khởi tạo")
	}
	if len(dest.DeviceTokens) == 0 {
		return OutcomeRejected, fmt.Errorf("user %s không có device token", dest.UserID)
	}

	message := &messaging.MulticastMessage{
		Tokens: dest.DeviceTokens,
		Notification: &messaging.Notification{
			Title: content.PushTitle,
			Body:  content.PushBody,
		},
	}

	br, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"userId": dest.UserID,
			"tokens": len(dest.DeviceTokens),
		}).Error("🔔 [PUSH] Lỗi khi gọi FCM")
		return OutcomeTransientFailure, err
	}

	if br.SuccessCount > 0 {
		log.WithFields(logrus.Fields{
			"userId":       dest.UserID,
			"successCount": br.SuccessCount,
			"failureCount": br.FailureCount,
		}).Info("🔔 [PUSH] Gửi push notification thành công")
		return OutcomeAccepted, nil
	}

	// Không token nào nhận được: phân biệt token chết (Rejected) với lỗi tạm thời
	allUnregistered := true
	var lastErr error
	for _, resp := range br.Responses {
		if resp.Error != nil {
			lastErr = resp.Error
			if !messaging.IsUnregistered(resp.Error) {
				allUnregistered = false
			}
		}
	}

	log.WithFields(logrus.Fields{
		"userId":          dest.UserID,
		"failureCount":    br.FailureCount,
		"allUnregistered": allUnregistered,
	}).Error("🔔 [PUSH] Không gửi được đến token nào")

	if allUnregistered {
		return OutcomeRejected, fmt.Errorf("tất cả device tokens đã unregistered: %w", lastErr)
	}
	return OutcomeTransientFailure, fmt.Errorf("fcm gửi thất bại cho mọi token: %w", lastErr)
}
