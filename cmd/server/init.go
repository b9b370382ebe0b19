package main

import (
	"context"
	"time"

	"hsse_platform/config"
	escmodels "hsse_platform/internal/api/escalation/models"
	escsvc "hsse_platform/internal/api/escalation/service"
	notifsvc "hsse_platform/internal/api/notification/service"
	"hsse_platform/internal/database"
	"hsse_platform/internal/escalation"
	"hsse_platform/internal/global"
	"hsse_platform/internal/lock"
	"hsse_platform/internal/logger"
	"hsse_platform/internal/notification"
	"hsse_platform/internal/notification/channels"
	"hsse_platform/internal/utility"
)

// Evaluator là instance evaluator dùng chung giữa worker và HTTP trigger.
// Dùng chung một instance để single-flight gate (atomic CAS) có hiệu lực
// giữa scheduled cycle và manual trigger.
var Evaluator *escalation.Evaluator

// InitGlobal khởi tạo các biến toàn cục theo thứ tự phụ thuộc:
// tên collection, validator, config, database, firebase.
func InitGlobal() {
	initColNames()
	initValidator()
	initConfig()
	initDatabase_MongoDB()
	initFirebase()
}

// initColNames gán tên các collection trong MongoDB
func initColNames() {
	// HSSE business collections (engine chỉ đọc)
	global.MongoDB_ColNames.Incidents = "hsse_incidents"
	global.MongoDB_ColNames.Hazards = "hsse_hazards"
	global.MongoDB_ColNames.Users = "hsse_users"
	global.MongoDB_ColNames.Departments = "hsse_departments"

	// Escalation engine collections
	global.MongoDB_ColNames.EscalationRules = "escalation_rules"
	global.MongoDB_ColNames.EscalationActions = "escalation_actions"
	global.MongoDB_ColNames.EscalationHistory = "escalation_history"
	global.MongoDB_ColNames.EscalationLocks = "escalation_locks"

	// Notification collections
	global.MongoDB_ColNames.NotificationTemplates = "notification_templates"
	global.MongoDB_ColNames.NotificationSenders = "notification_senders"

	logger.GetAppLogger().Info("Initialized collection names")
}

// initValidator khởi tạo validator và đăng ký các custom validation
func initValidator() {
	global.InitValidator()
	logger.GetAppLogger().Info("Initialized validator")
}

// initConfig khởi tạo cấu hình server từ file env
func initConfig() {
	log := logger.GetAppLogger()

	global.ServerConfig = config.NewConfig()
	if global.ServerConfig == nil {
		log.Fatal("Failed to load server configuration")
	}

	log.WithFields(map[string]interface{}{
		"address":    global.ServerConfig.Address,
		"database":   global.ServerConfig.MongoDB_DBName,
		"instanceId": global.ServerConfig.InstanceID,
	}).Info("Initialized server configuration")
}

// initDatabase_MongoDB khởi tạo kết nối MongoDB và đảm bảo các index cần thiết.
// Index unique (dedupKey, attempt) là bắt buộc cho tính đúng đắn của dedup,
// thiếu index coi như lỗi khởi động.
func initDatabase_MongoDB() {
	log := logger.GetAppLogger()

	client, err := database.GetInstance(global.ServerConfig)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	global.MongoDB_Session = client

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(global.ServerConfig.MongoDB_DBName)
	if err := database.EnsureEscalationIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure escalation indexes: %v", err)
	}

	log.Info("Initialized MongoDB connection and indexes")
}

// initFirebase khởi tạo Firebase Messaging cho kênh push.
// Không có config hoặc init lỗi thì chỉ warn: các kênh khác vẫn hoạt động,
// kênh push sẽ bị tắt.
func initFirebase() {
	log := logger.GetAppLogger()

	cfg := global.ServerConfig
	if cfg.FirebaseProjectID == "" || cfg.FirebaseCredentialsPath == "" {
		log.Warn("🔔 [PUSH] Firebase chưa được cấu hình, kênh push bị tắt")
		return
	}

	if err := utility.InitFirebase(cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath); err != nil {
		log.WithError(err).Warn("🔔 [PUSH] Không khởi tạo được Firebase, kênh push bị tắt")
		return
	}

	log.Info("Initialized Firebase Messaging")
}

// InitEvaluator wire evaluator từ các service, renderer, channel sender,
// recipient resolver và distributed lock. Gọi sau InitRegistry và InitDefaultData.
func InitEvaluator() {
	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	ruleService, err := escsvc.NewEscalationRuleService()
	if err != nil {
		log.Fatalf("Failed to create escalation rule service: %v", err)
	}
	actionService, err := escsvc.NewEscalationActionService()
	if err != nil {
		log.Fatalf("Failed to create escalation action service: %v", err)
	}
	historyService, err := escsvc.NewEscalationHistoryService()
	if err != nil {
		log.Fatalf("Failed to create escalation history service: %v", err)
	}
	itemService, err := escsvc.NewOpenItemService()
	if err != nil {
		log.Fatalf("Failed to create open item service: %v", err)
	}
	userService, err := escsvc.NewHsseUserService()
	if err != nil {
		log.Fatalf("Failed to create hsse user service: %v", err)
	}
	departmentService, err := escsvc.NewHsseDepartmentService()
	if err != nil {
		log.Fatalf("Failed to create hsse department service: %v", err)
	}
	templateService, err := notifsvc.NewNotificationTemplateService()
	if err != nil {
		log.Fatalf("Failed to create notification template service: %v", err)
	}
	senderService, err := notifsvc.NewNotificationSenderService()
	if err != nil {
		log.Fatalf("Failed to create notification sender service: %v", err)
	}

	renderer := notification.NewResolver(templateService, cfg.DefaultLanguage)
	resolvers := escalation.NewRecipientResolvers(userService, departmentService)
	senders := initChannelSenders(senderService)

	lockCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.EscalationLocks)
	if !exist {
		log.Fatal("Failed to get escalation_locks collection")
	}
	cycleLock := lock.NewMongoLock(lockCollection, cfg.InstanceID)

	Evaluator = escalation.NewEvaluator(
		ruleService,
		actionService,
		itemService,
		historyService,
		renderer,
		senders,
		resolvers,
		cycleLock,
		escalation.Config{
			MaxAttempts:     cfg.EscalationMaxAttempts,
			SendTimeout:     time.Duration(cfg.EscalationSendTimeout) * time.Second,
			Workers:         cfg.EscalationWorkers,
			DefaultLanguage: cfg.DefaultLanguage,
			// Lock sống gấp đôi chu kỳ: instance chết giữa cycle không khóa hệ thống lâu
			LockTTL: 2 * time.Duration(cfg.EscalationIntervalSeconds) * time.Second,
		},
	)

	log.WithFields(map[string]interface{}{
		"channels":    len(senders),
		"maxAttempts": cfg.EscalationMaxAttempts,
		"workers":     cfg.EscalationWorkers,
	}).Info("🚨 [ESCALATION] Initialized evaluator")
}

// initChannelSenders xây map channel -> sender từ cấu hình provider trong database.
// Channel chưa có sender active chỉ warn: dispatch qua channel đó sẽ ghi failed
// vào ledger và retry tự nhiên khi admin cấu hình xong.
func initChannelSenders(senderService *notifsvc.NotificationSenderService) map[string]channels.Sender {
	log := logger.GetAppLogger()
	senders := make(map[string]channels.Sender)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if emailConfig, err := senderService.FindActiveByChannel(ctx, escmodels.ChannelEmail); err == nil {
		senders[escmodels.ChannelEmail] = channels.NewEmailSender(&emailConfig)
	} else {
		log.Warn("📧 [EMAIL] Chưa có sender active, kênh email bị tắt")
	}

	if smsConfig, err := senderService.FindActiveByChannel(ctx, escmodels.ChannelSMS); err == nil {
		senders[escmodels.ChannelSMS] = channels.NewSMSSender(&smsConfig)
	} else {
		log.Warn("📱 [SMS] Chưa có sender active, kênh sms bị tắt")
	}

	if whatsappConfig, err := senderService.FindActiveByChannel(ctx, escmodels.ChannelWhatsApp); err == nil {
		senders[escmodels.ChannelWhatsApp] = channels.NewWhatsAppSender(&whatsappConfig)
	} else {
		log.Warn("💬 [WHATSAPP] Chưa có sender active, kênh whatsapp bị tắt")
	}

	if messagingClient := utility.GetFirebaseMessaging(); messagingClient != nil {
		senders[escmodels.ChannelPush] = channels.NewPushSender(messagingClient)
	} else {
		log.Warn("🔔 [PUSH] Firebase Messaging chưa sẵn sàng, kênh push bị tắt")
	}

	return senders
}
