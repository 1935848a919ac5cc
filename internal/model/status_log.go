package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryStatusLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DeliveryID uuid.UUID       `gorm:"type:uuid;not null" json:"delivery_id"`
	OldStatus  *DeliveryStatus `gorm:"type:delivery_status" json:"old_status"`
	NewStatus  DeliveryStatus  `gorm:"type:delivery_status;not null" json:"new_status"`
	Note       string          `gorm:"type:text" json:"note"`
	ChangedBy  *uuid.UUID      `gorm:"type:uuid" json:"changed_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (DeliveryStatusLog) TableName() string {
	return "delivery_status_log"
}

func (l *DeliveryStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

type ApprovalStatusLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ApprovalID uuid.UUID       `gorm:"type:uuid;not null" json:"approval_id"`
	OldStatus  *ApprovalStatus `gorm:"type:approval_status" json:"old_status"`
	NewStatus  ApprovalStatus  `gorm:"type:approval_status;not null" json:"new_status"`
	Note       string          `gorm:"type:text" json:"note"`
	ChangedBy  *uuid.UUID      `gorm:"type:uuid" json:"changed_by"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (ApprovalStatusLog) TableName() string {
	return "approval_status_log"
}

func (l *ApprovalStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
