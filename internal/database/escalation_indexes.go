package database

import (
	"context"
	"time"

	"hsse_platform/internal/global"
	"hsse_platform/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureEscalationIndexes tạo các index cần thiết cho escalation engine.
// Quan trọng nhất là unique index (dedupKey, attempt) trên escalation_history:
// đây là tuyến phòng thủ cuối cùng chống double-firing khi hai instance cùng
// vượt qua bước check trước khi ghi (xem distributed lock ở internal/lock).
func EnsureEscalationIndexes(ctx context.Context, db *mongo.Database) error {
	log := logger.GetAppLogger()

	// escalation_history: unique (dedupKey, attempt) + index phục vụ LevelFiredAt và truy vấn quản trị
	historyCol := db.Collection(global.MongoDB_ColNames.EscalationHistory)
	_, err := historyCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dedupKey", Value: 1}, {Key: "attempt", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("dedupKey_attempt_unique"),
		},
		{
			Keys:    bson.D{{Key: "dedupKey", Value: 1}, {Key: "outcome", Value: 1}},
			Options: options.Index().SetName("dedupKey_outcome"),
		},
		{
			Keys:    bson.D{{Key: "ruleId", Value: 1}, {Key: "itemId", Value: 1}, {Key: "level", Value: 1}},
			Options: options.Index().SetName("rule_item_level"),
		},
		{
			Keys:    bson.D{{Key: "firedAt", Value: -1}},
			Options: options.Index().SetName("firedAt_desc"),
		},
	})
	if err != nil {
		return err
	}

	// escalation_rules: truy vấn rules đang bật theo category
	rulesCol := db.Collection(global.MongoDB_ColNames.EscalationRules)
	_, err = rulesCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "isActive", Value: 1}, {Key: "category", Value: 1}},
			Options: options.Index().SetName("active_category"),
		},
	})
	if err != nil {
		return err
	}

	// escalation_actions: truy vấn actions theo rule, sắp xếp theo level
	actionsCol := db.Collection(global.MongoDB_ColNames.EscalationActions)
	_, err = actionsCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ruleId", Value: 1}, {Key: "level", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("rule_level_unique"),
		},
	})
	if err != nil {
		return err
	}

	// notification_templates: lookup theo (templateKey, language)
	templatesCol := db.Collection(global.MongoDB_ColNames.NotificationTemplates)
	_, err = templatesCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "templateKey", Value: 1}, {Key: "language", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("templateKey_language_unique"),
		},
	})
	if err != nil {
		return err
	}

	// escalation_locks: TTL index để Mongo tự dọn lock hết hạn
	locksCol := db.Collection(global.MongoDB_ColNames.EscalationLocks)
	_, err = locksCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expiresAt_ttl"),
		},
	})
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"collections": []string{
			global.MongoDB_ColNames.EscalationHistory,
			global.MongoDB_ColNames.EscalationRules,
			global.MongoDB_ColNames.EscalationActions,
			global.MongoDB_ColNames.NotificationTemplates,
			global.MongoDB_ColNames.EscalationLocks,
		},
		"timestamp": time.Now().Unix(),
	}).Info("Ensured escalation engine indexes")

	return nil
}
