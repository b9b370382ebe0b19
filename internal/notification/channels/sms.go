package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	notifmodels "hsse_platform/internal/api/notification/models"
	"hsse_platform/internal/logger"

	"github.com/sirupsen/logrus"
)

// SMSSender gửi SMS qua HTTP provider (API URL + API key cấu hình trong sender).
type SMSSender struct {
	sender *notifmodels.NotificationSender
	client *http.Client
}

// NewSMSSender tạo mới SMSSender
func NewSMSSender(sender *notifmodels.NotificationSender) *SMSSender {
	return &SMSSender{
		sender: sender,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// ChannelType trả về loại channel
func (s *SMSSender) ChannelType() string {
	return "sms"
}

// Send gửi SMS đến số điện thoại của destination.
// Provider trả 4xx là Rejected (payload/destination sai, retry vô ích);
// 5xx hoặc lỗi network là TransientFailure.
func (s *SMSSender) Send(ctx context.Context, dest Destination, content *RenderedContent) (Outcome, error) {
	log := logger.GetAppLogger()

	if dest.Phone == "" {
		return OutcomeRejected, fmt.Errorf("destination không có số điện thoại")
	}

	payload := map[string]interface{}{
		"to":       dest.Phone,
		"message":  content.SmsBody,
		"senderId": s.sender.SenderID,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return OutcomeRejected, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.sender.ApiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return OutcomeRejected, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.sender.ApiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"phone": dest.Phone,
			"url":   s.sender.ApiURL,
		}).Error("📱 [SMS] Lỗi khi gọi SMS provider")
		return OutcomeTransientFailure, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.WithFields(logrus.Fields{
			"phone": dest.Phone,
		}).Info("📱 [SMS] Gửi SMS thành công")
		return OutcomeAccepted, nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	sendErr := fmt.Errorf("sms provider returned status %d: %s", resp.StatusCode, string(bodyBytes))
	log.WithFields(logrus.Fields{
		"phone":      dest.Phone,
		"statusCode": resp.StatusCode,
		"response":   string(bodyBytes),
	}).Error("📱 [SMS] SMS provider trả về lỗi")

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return OutcomeRejected, sendErr
	}
	return OutcomeTransientFailure, sendErr
}
