// Package lock cung cấp distributed mutex trên MongoDB cho các job chạy đa instance.
package lock

import (
	"context"
	"time"

	"hsse_platform/internal/logger"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// lockDocument là document lock trong collection escalation_locks.
// TTL index trên expiresAt để Mongo tự dọn lock của instance đã chết.
type lockDocument struct {
	Key        string    `bson:"_id"`
	Owner      string    `bson:"owner"`
	AcquiredAt time.Time `bson:"acquiredAt"`
	ExpiresAt  time.Time `bson:"expiresAt"`
}

// MongoLock là distributed lock dựa trên unique _id của MongoDB.
// Acquire là một thao tác atomic duy nhất (upsert có điều kiện), nên hai instance
// không thể cùng giữ một key còn hiệu lực.
type MongoLock struct {
	collection *mongo.Collection
	owner      string
}

// NewMongoLock tạo mới MongoLock. owner định danh instance hiện tại (thường là hostname).
func NewMongoLock(collection *mongo.Collection, owner string) *MongoLock {
	return &MongoLock{
		collection: collection,
		owner:      owner,
	}
}

// TryAcquire thử giữ lock theo key trong khoảng ttl.
// Trả về false nếu instance khác đang giữ lock còn hiệu lực; không block chờ.
func (l *MongoLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	// Chỉ ghi đè được lock đã hết hạn; lock chưa tồn tại thì upsert tạo mới.
	// Nếu lock còn hiệu lực, filter không match và upsert đụng unique _id -> duplicate key.
	filter := bson.M{
		"_id":       key,
		"expiresAt": bson.M{"$lt": now},
	}
	// _id không nằm trong $set: upsert lấy _id từ filter, update giữ nguyên immutable field
	update := bson.M{
		"$set": bson.M{
			"owner":      l.owner,
			"acquiredAt": now,
			"expiresAt":  now.Add(ttl),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc lockDocument
	err := l.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Instance khác đang giữ lock còn hiệu lực
			return false, nil
		}
		return false, err
	}

	logger.GetAppLogger().WithFields(logrus.Fields{
		"key":       key,
		"owner":     l.owner,
		"expiresAt": doc.ExpiresAt,
	}).Debug("🔒 [LOCK] Đã giữ distributed lock")
	return true, nil
}

// Release nhả lock nếu instance hiện tại đang là owner.
// Lock của instance khác không bị ảnh hưởng (tránh release nhầm sau khi ttl hết hạn).
func (l *MongoLock) Release(ctx context.Context, key string) error {
	_, err := l.collection.DeleteOne(ctx, bson.M{
		"_id":   key,
		"owner": l.owner,
	})
	if err != nil {
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"key":   key,
			"owner": l.owner,
		}).Error("🔒 [LOCK] Lỗi khi nhả distributed lock")
		return err
	}
	return nil
}
