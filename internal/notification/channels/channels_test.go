// Package channels - Test outcome mapping của các channel sender.
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	notifmodels "hsse_platform/internal/api/notification/models"
)

func TestSMSSender_OutcomeMapping(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		want       Outcome
	}{
		{"provider accept", http.StatusOK, OutcomeAccepted},
		{"payload sai", http.StatusBadRequest, OutcomeRejected},
		{"provider lỗi", http.StatusInternalServerError, OutcomeTransientFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("Provider phải nhận POST, nhận được %s", r.Method)
				}
				if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
					t.Errorf("Thiếu Bearer token: %q", auth)
				}
				w.WriteHeader(tc.statusCode)
			}))
			defer server.Close()

			sender := NewSMSSender(&notifmodels.NotificationSender{
				ChannelType: "sms",
				ApiURL:      server.URL,
				ApiKey:      "test-key",
				SenderID:    "HSSE",
			})

			outcome, _ := sender.Send(context.Background(), Destination{Phone: "+84901234567"}, &RenderedContent{SmsBody: "test"})
			if outcome != tc.want {
				t.Errorf("Outcome sai: muốn %s, nhận được %s", tc.want, outcome)
			}
		})
	}
}

func TestSMSSender_NoPhoneRejected(t *testing.T) {
	sender := NewSMSSender(&notifmodels.NotificationSender{ChannelType: "sms", ApiURL: "http://localhost:0"})

	outcome, err := sender.Send(context.Background(), Destination{}, &RenderedContent{SmsBody: "test"})
	if outcome != OutcomeRejected || err == nil {
		t.Errorf("Destination không có phone phải Rejected kèm lỗi: outcome=%s err=%v", outcome, err)
	}
}

func TestSMSSender_NetworkErrorTransient(t *testing.T) {
	// Server đóng ngay để giả lập provider không liên lạc được
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	sender := NewSMSSender(&notifmodels.NotificationSender{ChannelType: "sms", ApiURL: server.URL})
	outcome, err := sender.Send(context.Background(), Destination{Phone: "+84901234567"}, &RenderedContent{SmsBody: "test"})
	if outcome != OutcomeTransientFailure || err == nil {
		t.Errorf("Lỗi network phải TransientFailure kèm lỗi: outcome=%s err=%v", outcome, err)
	}
}

func TestWhatsAppSender_OutcomeMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/123456/messages" {
			t.Errorf("Path sai: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	original := graphAPIBaseURL
	graphAPIBaseURL = server.URL
	defer func() { graphAPIBaseURL = original }()

	sender := NewWhatsAppSender(&notifmodels.NotificationSender{
		ChannelType:   "whatsapp",
		PhoneNumberID: "123456",
		AccessToken:   "test-token",
	})

	outcome, err := sender.Send(context.Background(), Destination{Phone: "+84901234567"}, &RenderedContent{WhatsappBody: "test"})
	if err != nil {
		t.Fatalf("Send trả về lỗi: %v", err)
	}
	if outcome != OutcomeAccepted {
		t.Errorf("Cloud API trả 200 phải Accepted, nhận được %s", outcome)
	}
}

func TestWhatsAppSender_TemplatePayload(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Payload không phải JSON hợp lệ: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	original := graphAPIBaseURL
	graphAPIBaseURL = server.URL
	defer func() { graphAPIBaseURL = original }()

	sender := NewWhatsAppSender(&notifmodels.NotificationSender{
		ChannelType:   "whatsapp",
		PhoneNumberID: "123456",
		AccessToken:   "test-token",
	})

	content := &RenderedContent{
		WhatsappBody: "fallback text",
		WhatsappTemplate: &WhatsAppTemplate{
			Name:     "incident_alert",
			Language: "vi",
			Parameters: []WhatsAppTemplateParam{
				{Name: "code", Value: "INC-001"},
				{Name: "severity", Value: "critical"},
			},
		},
	}

	outcome, err := sender.Send(context.Background(), Destination{Phone: "+84901234567"}, content)
	if err != nil || outcome != OutcomeAccepted {
		t.Fatalf("Send thất bại: outcome=%s err=%v", outcome, err)
	}

	if payload["type"] != "template" {
		t.Errorf("Có template phải gửi type=template, nhận được %v", payload["type"])
	}
	tpl, _ := payload["template"].(map[string]interface{})
	if tpl == nil || tpl["name"] != "incident_alert" {
		t.Fatalf("Template object sai: %v", payload["template"])
	}
	lang, _ := tpl["language"].(map[string]interface{})
	if lang == nil || lang["code"] != "vi" {
		t.Errorf("Language code sai: %v", tpl["language"])
	}
	components, _ := tpl["components"].([]interface{})
	if len(components) != 1 {
		t.Fatalf("Phải có đúng 1 body component: %v", tpl["components"])
	}
	body, _ := components[0].(map[string]interface{})
	params, _ := body["parameters"].([]interface{})
	if len(params) != 2 {
		t.Fatalf("Phải có 2 named parameter: %v", body["parameters"])
	}
	first, _ := params[0].(map[string]interface{})
	if first["parameter_name"] != "code" || first["text"] != "INC-001" {
		t.Errorf("Named parameter sai: %v", first)
	}
}

func TestWhatsAppSender_MediaPayload(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Payload không phải JSON hợp lệ: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	original := graphAPIBaseURL
	graphAPIBaseURL = server.URL
	defer func() { graphAPIBaseURL = original }()

	sender := NewWhatsAppSender(&notifmodels.NotificationSender{
		ChannelType:   "whatsapp",
		PhoneNumberID: "123456",
	})

	content := &RenderedContent{
		WhatsappMedia: &WhatsAppMedia{
			Kind:    "image",
			URL:     "https://cdn.example.com/site-map.png",
			Caption: "Sơ đồ vị trí sự cố INC-001",
		},
	}

	if outcome, err := sender.Send(context.Background(), Destination{Phone: "+84901234567"}, content); err != nil || outcome != OutcomeAccepted {
		t.Fatalf("Send thất bại: outcome=%s err=%v", outcome, err)
	}

	if payload["type"] != "image" {
		t.Errorf("Media image phải gửi type=image, nhận được %v", payload["type"])
	}
	image, _ := payload["image"].(map[string]interface{})
	if image == nil || image["link"] != "https://cdn.example.com/site-map.png" {
		t.Fatalf("Media object sai: %v", payload["image"])
	}
	if image["caption"] != "Sơ đồ vị trí sự cố INC-001" {
		t.Errorf("Caption sai: %v", image["caption"])
	}
}

func TestBuildWhatsAppPayload_DocumentFilename(t *testing.T) {
	payload := buildWhatsAppPayload("+84901234567", &RenderedContent{
		WhatsappMedia: &WhatsAppMedia{
			Kind:     "document",
			URL:      "https://cdn.example.com/report.pdf",
			Filename: "incident-report.pdf",
		},
	})

	doc, _ := payload["document"].(map[string]interface{})
	if doc == nil || doc["filename"] != "incident-report.pdf" {
		t.Errorf("Document phải kèm filename: %v", payload["document"])
	}
}

func TestEmailSender_InvalidAddressRejected(t *testing.T) {
	sender := NewEmailSender(&notifmodels.NotificationSender{
		ChannelType: "email",
		FromAddress: "noreply@example.com",
		FromName:    "HSSE",
	})

	outcome, err := sender.Send(context.Background(), Destination{Email: "not an address"}, &RenderedContent{Subject: "test"})
	if outcome != OutcomeRejected || err == nil {
		t.Errorf("Email không hợp lệ phải Rejected kèm lỗi: outcome=%s err=%v", outcome, err)
	}

	outcome, err = sender.Send(context.Background(), Destination{}, &RenderedContent{Subject: "test"})
	if outcome != OutcomeRejected || err == nil {
		t.Errorf("Destination không có email phải Rejected kèm lỗi: outcome=%s err=%v", outcome, err)
	}
}

func TestEmailSender_BuildMessageCcAndAttachments(t *testing.T) {
	sender := NewEmailSender(&notifmodels.NotificationSender{
		ChannelType: "email",
		FromAddress: "noreply@example.com",
		FromName:    "HSSE",
	})

	dest := Destination{
		Email: "manager@example.com",
		// Địa chỉ Cc hỏng bị bỏ qua, không hỏng cả message
		Cc: []string{"safety@example.com", "not an address", "director@example.com"},
	}
	content := &RenderedContent{
		Subject:   "Incident INC-001",
		EmailBody: "<p>Gas leak</p>",
		Attachments: []Attachment{
			{Filename: "incident-report.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4 test")},
		},
	}

	var buf bytes.Buffer
	if _, err := sender.buildMessage(dest, content).WriteTo(&buf); err != nil {
		t.Fatalf("Không serialize được message: %v", err)
	}
	raw := buf.String()

	if !strings.Contains(raw, "Cc: safety@example.com, director@example.com") {
		t.Errorf("Message phải có Cc header với các địa chỉ hợp lệ:\n%s", raw)
	}
	if strings.Contains(raw, "not an address") {
		t.Error("Địa chỉ Cc không hợp lệ phải bị loại khỏi message")
	}
	if !strings.Contains(raw, "incident-report.pdf") {
		t.Error("Message phải có attachment")
	}
	if !strings.Contains(raw, "application/pdf") {
		t.Error("Attachment phải giữ Content-Type đã khai báo")
	}
}

func TestPushSender_NilClientTransient(t *testing.T) {
	sender := NewPushSender(nil)

	outcome, err := sender.Send(context.Background(), Destination{DeviceTokens: []string{"token"}}, &RenderedContent{PushTitle: "test"})
	if outcome != OutcomeTransientFailure || err == nil {
		t.Errorf("Client chưa init phải TransientFailure kèm lỗi: outcome=%s err=%v", outcome, err)
	}
}
