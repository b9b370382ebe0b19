package escsvc

import (
	"context"
	"fmt"

	basesvc "hsse_platform/internal/api/base/service"
	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/global"
	"hsse_platform/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EscalationHistoryService là ledger append-only của các lần bắn escalation.
// Service này là writer duy nhất của collection escalation_history và là
// nguồn sự thật cho deduplication của evaluator.
type EscalationHistoryService struct {
	*basesvc.BaseServiceMongoImpl[escmodels.EscalationHistory]
}

// NewEscalationHistoryService tạo mới EscalationHistoryService
func NewEscalationHistoryService() (*EscalationHistoryService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.EscalationHistory)
	if !exist {
		return nil, fmt.Errorf("failed to get escalation_history collection: %v", common.ErrNotFound)
	}

	return &EscalationHistoryService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[escmodels.EscalationHistory](collection),
	}, nil
}

// HasTerminal kiểm tra dedupKey đã có bản ghi terminal (sent hoặc suppressed) chưa.
// Có rồi nghĩa là tuple này không bao giờ được bắn lại.
func (s *EscalationHistoryService) HasTerminal(ctx context.Context, dedupKey string) (bool, error) {
	return s.DocumentExists(ctx, bson.M{
		"dedupKey": dedupKey,
		"outcome":  bson.M{"$in": []string{escmodels.OutcomeSent, escmodels.OutcomeSuppressed}},
	})
}

// CountFailedAttempts đếm số lần failed của một dedupKey, dùng để enforce retry cap.
func (s *EscalationHistoryService) CountFailedAttempts(ctx context.Context, dedupKey string) (int64, error) {
	return s.CountDocuments(ctx, bson.M{
		"dedupKey": dedupKey,
		"outcome":  escmodels.OutcomeFailed,
	})
}

// LevelFiredAt trả về thời điểm firedAt của bản ghi terminal sớm nhất cho (rule, item, level).
// Trả về (0, false, nil) nếu level đó chưa có bản ghi terminal nào.
// Evaluator dùng hàm này để gate sequential escalation: level N chỉ eligible khi
// level N-1 đã terminal đủ lâu.
func (s *EscalationHistoryService) LevelFiredAt(ctx context.Context, ruleID, itemID primitive.ObjectID, level int) (int64, bool, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "firedAt", Value: 1}})
	entry, err := s.FindOne(ctx, bson.M{
		"ruleId":  ruleID,
		"itemId":  itemID,
		"level":   level,
		"outcome": bson.M{"$in": []string{escmodels.OutcomeSent, escmodels.OutcomeSuppressed}},
	}, opts)
	if err != nil {
		if err == common.ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	return entry.FiredAt, true, nil
}

// RecordAttempt ghi một lần bắn vào ledger. Unique index (dedupKey, attempt)
// sẽ trả về common.ErrDuplicate nếu một evaluator khác đã ghi attempt này trước,
// caller coi đó là dấu hiệu tuple đã được xử lý và bỏ qua.
func (s *EscalationHistoryService) RecordAttempt(ctx context.Context, entry escmodels.EscalationHistory) (escmodels.EscalationHistory, error) {
	created, err := s.InsertOne(ctx, entry)
	if err != nil {
		return created, err
	}

	logger.GetAuditLogger().WithFields(logrus.Fields{
		"dedupKey":    created.DedupKey,
		"ruleId":      created.RuleID.Hex(),
		"itemId":      created.ItemID.Hex(),
		"recipientId": created.RecipientID,
		"channel":     created.Channel,
		"level":       created.Level,
		"attempt":     created.Attempt,
		"outcome":     created.Outcome,
	}).Info("Escalation attempt recorded")

	return created, nil
}
