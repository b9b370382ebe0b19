package main

import (
	"hsse_platform/config"
	"hsse_platform/internal/global"
	"hsse_platform/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// InitRegistry khởi tạo registry và đăng ký các collections
func InitRegistry() {
	log := logger.GetAppLogger()

	err := InitCollections(global.MongoDB_Session, global.ServerConfig)
	if err != nil {
		log.Fatalf("Failed to initialize collections: %v", err)
	}
	log.Info("Initialized collection registry")
}

// InitCollections đăng ký các collections MongoDB vào registry toàn cục.
// Service nào cần collection sẽ lấy từ registry theo tên thay vì giữ
// tham chiếu database riêng.
func InitCollections(client *mongo.Client, cfg *config.Configuration) error {
	db := client.Database(cfg.MongoDB_DBName)

	colNames := []string{
		global.MongoDB_ColNames.Incidents,
		global.MongoDB_ColNames.Hazards,
		global.MongoDB_ColNames.Users,
		global.MongoDB_ColNames.Departments,
		global.MongoDB_ColNames.EscalationRules,
		global.MongoDB_ColNames.EscalationActions,
		global.MongoDB_ColNames.EscalationHistory,
		global.MongoDB_ColNames.EscalationLocks,
		global.MongoDB_ColNames.NotificationTemplates,
		global.MongoDB_ColNames.NotificationSenders,
	}

	log := logger.GetAppLogger()
	for _, name := range colNames {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			log.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}

		if registered {
			log.Infof("Collection %s registered successfully", name)
		} else {
			log.Errorf("Collection %s already registered", name)
		}
	}

	return nil
}
