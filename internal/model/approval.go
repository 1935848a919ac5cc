package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "PENDING"
	ApprovalStatusApproved  ApprovalStatus = "APPROVED"
	ApprovalStatusRejected  ApprovalStatus = "REJECTED"
	ApprovalStatusCancelled ApprovalStatus = "CANCELLED"
)

// CapacityApprovalRequest links a delivery document that exceeded computed
// capacity to a manager decision. Only PENDING requests may move.
type CapacityApprovalRequest struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Number     string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"number"`
	DeliveryID uuid.UUID      `gorm:"type:uuid;not null;index" json:"delivery_id"`
	Status     ApprovalStatus `gorm:"type:approval_status;not null;default:'PENDING';index" json:"status"`

	// Capacity snapshot at request time, for the approver's context.
	ExistingCount int `gorm:"not null;default:0" json:"existing_count"`
	DailyLimit    int `gorm:"not null;default:0" json:"daily_limit"`

	ApprovedBy    *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	ApprovedAt    *time.Time `json:"approved_at"`
	ApprovalNote  string     `gorm:"type:text" json:"approval_note"`
	RejectedBy    *uuid.UUID `gorm:"type:uuid" json:"rejected_by"`
	RejectedAt    *time.Time `json:"rejected_at"`
	RejectionNote string     `gorm:"type:text" json:"rejection_note"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Delivery *DeliveryDocument `gorm:"foreignKey:DeliveryID" json:"delivery,omitempty"`
}

func (CapacityApprovalRequest) TableName() string {
	return "capacity_approval_requests"
}

func (r *CapacityApprovalRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r CapacityApprovalRequest) RemainingCapacity() int {
	return r.DailyLimit - r.ExistingCount
}

// ApprovalStats summarizes requests per status for the manager dashboard.
type ApprovalStats struct {
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`
}
