package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryStatus string

const (
	DeliveryStatusDraft     DeliveryStatus = "DRAFT"
	DeliveryStatusReady     DeliveryStatus = "READY"
	DeliveryStatusInTransit DeliveryStatus = "IN_TRANSIT"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled DeliveryStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusCancelled
}

// CountsAgainstCapacity reports whether a document in this status occupies a
// capacity slot. Only cancelled documents release their slot.
func (s DeliveryStatus) CountsAgainstCapacity() bool {
	return s != DeliveryStatusCancelled
}

// NextStatuses lists the allowed forward transitions. Cancel is reachable
// from every non-terminal state; the rest are one-directional.
func (s DeliveryStatus) NextStatuses() []DeliveryStatus {
	switch s {
	case DeliveryStatusDraft:
		return []DeliveryStatus{DeliveryStatusReady, DeliveryStatusCancelled}
	case DeliveryStatusReady:
		return []DeliveryStatus{DeliveryStatusInTransit, DeliveryStatusCancelled}
	case DeliveryStatusInTransit:
		return []DeliveryStatus{DeliveryStatusDelivered, DeliveryStatusCancelled}
	default:
		return nil
	}
}

// CanTransitionTo reports whether target is an allowed next status.
func (s DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	for _, next := range s.NextStatuses() {
		if next == target {
			return true
		}
	}
	return false
}

type DeliveryDocument struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Number       string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"number"`
	DeliveryDate time.Time      `gorm:"type:date;not null;index" json:"delivery_date"`
	VehicleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	DistrictID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"district_id"`
	Status       DeliveryStatus `gorm:"type:delivery_status;not null;default:'READY';index" json:"status"`

	CustomerName    string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone   string `gorm:"type:varchar(32)" json:"customer_phone"`
	ManualPhone     string `gorm:"type:varchar(32)" json:"manual_phone"`
	CustomerAddress string `gorm:"type:text" json:"customer_address"`
	DriverName      string `gorm:"type:varchar(255)" json:"driver_name"`

	TransferRef string `gorm:"type:varchar(64)" json:"transfer_ref"`
	StopNumber  int    `gorm:"not null;default:1" json:"stop_number"`
	Priority    int    `gorm:"not null;default:0" json:"priority"`

	ReceivedBy  string     `gorm:"type:varchar(255)" json:"received_by"`
	DeliveredAt *time.Time `json:"delivered_at"`
	Notes       string     `gorm:"type:text" json:"notes"`

	ScheduledSmsSent  bool `gorm:"not null;default:false" json:"scheduled_sms_sent"`
	DispatchedSmsSent bool `gorm:"not null;default:false" json:"dispatched_sms_sent"`
	DeliveredSmsSent  bool `gorm:"not null;default:false" json:"delivered_sms_sent"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Vehicle  *Vehicle       `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	District *District      `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
	Lines    []DeliveryLine `gorm:"foreignKey:DeliveryID" json:"lines,omitempty"`
}

func (DeliveryDocument) TableName() string {
	return "delivery_documents"
}

func (d *DeliveryDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Phone returns the number SMS messages go to: the manually entered number
// wins over the customer record's.
func (d DeliveryDocument) Phone() string {
	if d.ManualPhone != "" {
		return d.ManualPhone
	}
	return d.CustomerPhone
}

type DeliveryLine struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DeliveryID uuid.UUID `gorm:"type:uuid;not null;index" json:"delivery_id"`
	Sequence   int       `gorm:"not null;default:1" json:"sequence"`
	Product    string    `gorm:"type:varchar(255);not null" json:"product"`
	Quantity   float64   `gorm:"not null;default:1" json:"quantity"`
	Unit       string    `gorm:"type:varchar(32)" json:"unit"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DeliveryLine) TableName() string {
	return "delivery_lines"
}

func (l *DeliveryLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
