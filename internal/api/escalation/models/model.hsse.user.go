package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HsseUser - người dùng HSSE (nhân viên, giám sát viên, trưởng bộ phận).
// Collection này do module quản trị người dùng sở hữu; engine chỉ đọc để resolve recipient.
type HsseUser struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Roles        []string           `json:"roles" bson:"roles"`
	SupervisorID primitive.ObjectID `json:"supervisorId,omitempty" bson:"supervisorId,omitempty"`
	DepartmentID primitive.ObjectID `json:"departmentId,omitempty" bson:"departmentId,omitempty"`
	DeviceTokens []string           `json:"deviceTokens,omitempty" bson:"deviceTokens,omitempty"`
	Language     string             `json:"language,omitempty" bson:"language,omitempty"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64              `json:"updatedAt" bson:"updatedAt"`
}

// ToRecipient chuyển user thành Recipient cho dispatch.
func (u *HsseUser) ToRecipient() Recipient {
	return Recipient{
		UserID:       u.ID.Hex(),
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		DeviceTokens: u.DeviceTokens,
		Language:     u.Language,
	}
}

// HsseDepartment - bộ phận trong tổ chức, dùng cho strategy DepartmentHead.
type HsseDepartment struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	HeadUserID primitive.ObjectID `json:"headUserId,omitempty" bson:"headUserId,omitempty"`
	CreatedAt  int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt  int64              `json:"updatedAt" bson:"updatedAt"`
}
