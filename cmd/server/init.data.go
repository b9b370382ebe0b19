package main

import (
	"context"
	"time"

	escmodels "hsse_platform/internal/api/escalation/models"
	notifmodels "hsse_platform/internal/api/notification/models"
	notifsvc "hsse_platform/internal/api/notification/service"
	"hsse_platform/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// InitDefaultData khởi tạo dữ liệu mặc định cho hệ thống notification:
// template escalation cho incident/hazard (en + vi) và sender placeholder
// cho từng channel. Chỉ insert khi chưa tồn tại, không ghi đè dữ liệu admin đã sửa.
func InitDefaultData() {
	log := logger.GetAppLogger()
	log.Info("🔄 [INIT] Starting InitDefaultData...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	templateService, err := notifsvc.NewNotificationTemplateService()
	if err != nil {
		log.Fatalf("Failed to create notification template service: %v", err)
	}
	senderService, err := notifsvc.NewNotificationSenderService()
	if err != nil {
		log.Fatalf("Failed to create notification sender service: %v", err)
	}

	if err := seedTemplates(ctx, templateService); err != nil {
		log.WithError(err).Warn("⚠️ [TEMPLATE] Không seed được default templates")
	} else {
		log.Info("✅ [INIT] Default notification templates initialized")
	}

	if err := seedSenders(ctx, senderService); err != nil {
		log.WithError(err).Warn("⚠️ [INIT] Không seed được default senders")
	} else {
		log.Info("✅ [INIT] Default notification senders initialized")
	}

	log.Info("✅ [INIT] InitDefaultData completed")
}

// seedTemplates insert các template mặc định nếu chưa có.
func seedTemplates(ctx context.Context, service *notifsvc.NotificationTemplateService) error {
	requiredFields := []string{"title", "code", "severity", "level"}

	templates := []notifmodels.NotificationTemplate{
		{
			TemplateKey: "incident_escalation",
			Language:    "en",
			Description: "Default escalation template for incidents",
			Subject:     "[HSSE] Incident {{code}} escalated to level {{level}}",
			EmailBody: "Dear {{recipientName}},\n\n" +
				"Incident {{code}} ({{title}}) with severity {{severity}} has been escalated to level {{level}}.\n" +
				"It has been unaddressed for {{elapsedHours}} hours. Current status: {{status}}.\n" +
				"Location: {{location}}.\n\nPlease take action immediately.",
			SmsBody:        "HSSE: Incident {{code}} ({{severity}}) escalated to level {{level}}. Unaddressed for {{elapsedHours}}h. Please act now.",
			PushTitle:      "Incident {{code}} escalated",
			PushBody:       "Severity {{severity}}, level {{level}}. Unaddressed for {{elapsedHours}}h.",
			RequiredFields: requiredFields,
			IsActive:       true,
		},
		{
			TemplateKey: "incident_escalation",
			Language:    "vi",
			Description: "Template escalation mặc định cho sự cố",
			Subject:     "[HSSE] Sự cố {{code}} đã leo thang lên cấp {{level}}",
			EmailBody: "Kính gửi {{recipientName}},\n\n" +
				"Sự cố {{code}} ({{title}}) mức độ {{severity}} đã leo thang lên cấp {{level}}.\n" +
				"Sự cố chưa được xử lý trong {{elapsedHours}} giờ. Trạng thái hiện tại: {{status}}.\n" +
				"Vị trí: {{location}}.\n\nVui lòng xử lý ngay lập tức.",
			SmsBody:        "HSSE: Su co {{code}} ({{severity}}) leo thang len cap {{level}}. Chua xu ly {{elapsedHours}}h. Vui long xu ly ngay.",
			PushTitle:      "Sự cố {{code}} đã leo thang",
			PushBody:       "Mức độ {{severity}}, cấp {{level}}. Chưa xử lý trong {{elapsedHours}} giờ.",
			RequiredFields: requiredFields,
			IsActive:       true,
		},
		{
			TemplateKey: "hazard_escalation",
			Language:    "en",
			Description: "Default escalation template for hazards",
			Subject:     "[HSSE] Hazard {{code}} escalated to level {{level}}",
			EmailBody: "Dear {{recipientName}},\n\n" +
				"Hazard {{code}} ({{title}}) with severity {{severity}} has been escalated to level {{level}}.\n" +
				"It has been unaddressed for {{elapsedHours}} hours. Current status: {{status}}.\n" +
				"Location: {{location}}.\n\nPlease take action immediately.",
			SmsBody:        "HSSE: Hazard {{code}} ({{severity}}) escalated to level {{level}}. Unaddressed for {{elapsedHours}}h. Please act now.",
			PushTitle:      "Hazard {{code}} escalated",
			PushBody:       "Severity {{severity}}, level {{level}}. Unaddressed for {{elapsedHours}}h.",
			RequiredFields: requiredFields,
			IsActive:       true,
		},
		{
			TemplateKey: "hazard_escalation",
			Language:    "vi",
			Description: "Template escalation mặc định cho mối nguy",
			Subject:     "[HSSE] Mối nguy {{code}} đã leo thang lên cấp {{level}}",
			EmailBody: "Kính gửi {{recipientName}},\n\n" +
				"Mối nguy {{code}} ({{title}}) mức độ {{severity}} đã leo thang lên cấp {{level}}.\n" +
				"Mối nguy chưa được xử lý trong {{elapsedHours}} giờ. Trạng thái hiện tại: {{status}}.\n" +
				"Vị trí: {{location}}.\n\nVui lòng xử lý ngay lập tức.",
			SmsBody:        "HSSE: Moi nguy {{code}} ({{severity}}) leo thang len cap {{level}}. Chua xu ly {{elapsedHours}}h. Vui long xu ly ngay.",
			PushTitle:      "Mối nguy {{code}} đã leo thang",
			PushBody:       "Mức độ {{severity}}, cấp {{level}}. Chưa xử lý trong {{elapsedHours}} giờ.",
			RequiredFields: requiredFields,
			IsActive:       true,
		},
	}

	log := logger.GetAppLogger()
	for _, template := range templates {
		exists, err := service.DocumentExists(ctx, bson.M{
			"templateKey": template.TemplateKey,
			"language":    template.Language,
		})
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if _, err := service.InsertOne(ctx, template); err != nil {
			return err
		}
		log.Infof("Seeded notification template %s (%s)", template.TemplateKey, template.Language)
	}

	return nil
}

// seedSenders insert sender placeholder cho từng channel nếu channel đó chưa có
// sender nào. Credentials để trống và isActive = false, admin bổ sung rồi bật sau.
func seedSenders(ctx context.Context, service *notifsvc.NotificationSenderService) error {
	placeholders := []notifmodels.NotificationSender{
		{
			Name:        "Default SMTP Sender",
			ChannelType: escmodels.ChannelEmail,
			SmtpPort:    587,
			FromName:    "HSSE Platform",
		},
		{
			Name:        "Default SMS Sender",
			ChannelType: escmodels.ChannelSMS,
			SenderID:    "HSSE",
		},
		{
			Name:        "Default WhatsApp Sender",
			ChannelType: escmodels.ChannelWhatsApp,
		},
	}

	log := logger.GetAppLogger()
	for _, placeholder := range placeholders {
		exists, err := service.DocumentExists(ctx, bson.M{"channelType": placeholder.ChannelType})
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if _, err := service.InsertOne(ctx, placeholder); err != nil {
			return err
		}
		log.Infof("Seeded placeholder sender for channel %s (inactive, cần bổ sung credentials)", placeholder.ChannelType)
	}

	return nil
}
