package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemSummary - snapshot của một open item (incident hoặc hazard) đủ cho evaluator
// đánh giá trigger predicate và resolve recipient, không kéo theo toàn bộ document HSSE.
type ItemSummary struct {
	ID                 primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Category           string             `json:"category" bson:"category"`
	Code               string             `json:"code" bson:"code"`
	Title              string             `json:"title" bson:"title"`
	Severity           string             `json:"severity" bson:"severity"`
	Status             string             `json:"status" bson:"status"`
	Acknowledged       bool               `json:"acknowledged" bson:"acknowledged"`
	ReporterID         primitive.ObjectID `json:"reporterId,omitempty" bson:"reporterId,omitempty"`
	DepartmentID       primitive.ObjectID `json:"departmentId,omitempty" bson:"departmentId,omitempty"`
	Location           string             `json:"location,omitempty" bson:"location,omitempty"`
	CreatedAt          int64              `json:"createdAt" bson:"createdAt"`
	LastStatusChangeAt int64              `json:"lastStatusChangeAt" bson:"lastStatusChangeAt"`
}

// Recipient - danh tính người nhận đã resolve từ strategy của action.
type Recipient struct {
	UserID       string   `json:"userId"`
	Name         string   `json:"name"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	DeviceTokens []string `json:"deviceTokens,omitempty"`
	Language     string   `json:"language,omitempty"`
}
