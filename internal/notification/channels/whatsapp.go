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

// graphAPIBaseURL là endpoint của WhatsApp Cloud API (var để test override)
var graphAPIBaseURL = "https://graph.facebook.com/v18.0"

// WhatsAppSender gửi WhatsApp message qua Cloud API.
type WhatsAppSender struct {
	sender *notifmodels.NotificationSender
	client *http.Client
}

// NewWhatsAppSender tạo mới WhatsAppSender
func NewWhatsAppSender(sender *notifmodels.NotificationSender) *WhatsAppSender {
	return &WhatsAppSender{
		sender: sender,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// ChannelType trả về loại channel
func (s *WhatsAppSender) ChannelType() string {
	return "whatsapp"
}

// Send gửi message đến số WhatsApp của destination.
// Ưu tiên template đã duyệt, rồi media, cuối cùng là text thuần.
// Cloud API trả 4xx là Rejected; 5xx hoặc lỗi network là TransientFailure.
func (s *WhatsAppSender) Send(ctx context.Context, dest Destination, content *RenderedContent) (Outcome, error) {
	log := logger.GetAppLogger()

	if dest.Phone == "" {
		return OutcomeRejected, fmt.Errorf("destination không có số điện thoại")
	}

	url := fmt.Sprintf("%s/%s/messages", graphAPIBaseURL, s.sender.PhoneNumberID)
	payload := buildWhatsAppPayload(dest.Phone, content)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return OutcomeRejected, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return OutcomeRejected, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.sender.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"phone": dest.Phone,
		}).Error("💬 [WHATSAPP] Lỗi khi gọi WhatsApp Cloud API")
		return OutcomeTransientFailure, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.WithFields(logrus.Fields{
			"phone": dest.Phone,
		}).Info("💬 [WHATSAPP] Gửi WhatsApp message thành công")
		return OutcomeAccepted, nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	sendErr := fmt.Errorf("whatsapp API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	log.WithFields(logrus.Fields{
		"phone":      dest.Phone,
		"statusCode": resp.StatusCode,
		"response":   string(bodyBytes),
	}).Error("💬 [WHATSAPP] WhatsApp Cloud API trả về lỗi")

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return OutcomeRejected, sendErr
	}
	return OutcomeTransientFailure, sendErr
}

// buildWhatsAppPayload dựng message payload theo nội dung có mặt:
// template đã duyệt > media kèm caption > text thuần.
func buildWhatsAppPayload(phone string, content *RenderedContent) map[string]interface{} {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                phone,
	}

	if tpl := content.WhatsappTemplate; tpl != nil {
		params := make([]map[string]interface{}, 0, len(tpl.Parameters))
		for _, p := range tpl.Parameters {
			params = append(params, map[string]interface{}{
				"type":           "text",
				"parameter_name": p.Name,
				"text":           p.Value,
			})
		}
		payload["type"] = "template"
		payload["template"] = map[string]interface{}{
			"name":     tpl.Name,
			"language": map[string]interface{}{"code": tpl.Language},
			"components": []map[string]interface{}{
				{"type": "body", "parameters": params},
			},
		}
		return payload
	}

	if media := content.WhatsappMedia; media != nil {
		object := map[string]interface{}{"link": media.URL}
		if media.Caption != "" {
			object["caption"] = media.Caption
		}
		if media.Kind == "document" && media.Filename != "" {
			object["filename"] = media.Filename
		}
		payload["type"] = media.Kind
		payload[media.Kind] = object
		return payload
	}

	payload["type"] = "text"
	payload["text"] = map[string]interface{}{"body": content.WhatsappBody}
	return payload
}
