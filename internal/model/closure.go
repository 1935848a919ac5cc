package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClosureReason string

const (
	ClosureReasonMaintenance ClosureReason = "MAINTENANCE"
	ClosureReasonBreakdown   ClosureReason = "BREAKDOWN"
	ClosureReasonAccident    ClosureReason = "ACCIDENT"
	ClosureReasonFuelIssue   ClosureReason = "FUEL_ISSUE"
	ClosureReasonNoDriver    ClosureReason = "NO_DRIVER"
	ClosureReasonOther       ClosureReason = "OTHER"
)

func (r ClosureReason) Label() string {
	switch r {
	case ClosureReasonMaintenance:
		return "Bakım"
	case ClosureReasonBreakdown:
		return "Arıza"
	case ClosureReasonAccident:
		return "Kaza"
	case ClosureReasonFuelIssue:
		return "Yakıt Sorunu"
	case ClosureReasonNoDriver:
		return "Sürücü Yok"
	case ClosureReasonOther:
		return "Diğer"
	default:
		return string(r)
	}
}

// VehicleClosure takes a vehicle out of service for an inclusive date range.
type VehicleClosure struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	VehicleID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	StartDate   time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time     `gorm:"type:date;not null" json:"end_date"`
	Reason      ClosureReason `gorm:"type:closure_reason;not null;default:'MAINTENANCE'" json:"reason"`
	Description string        `gorm:"type:text" json:"description"`
	Active      bool          `gorm:"not null;default:true" json:"active"`
	ClosedBy    uuid.UUID     `gorm:"type:uuid" json:"closed_by"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

func (VehicleClosure) TableName() string {
	return "vehicle_closures"
}

func (c *VehicleClosure) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Contains reports whether the date falls inside the closure range, bounds
// inclusive.
func (c VehicleClosure) Contains(date time.Time) bool {
	return !date.Before(c.StartDate) && !date.After(c.EndDate)
}

func (c VehicleClosure) Days() int {
	return int(c.EndDate.Sub(c.StartDate).Hours()/24) + 1
}

// Overlaps reports whether two date ranges share at least one day.
func (c VehicleClosure) Overlaps(start, end time.Time) bool {
	return !c.StartDate.After(end) && !c.EndDate.Before(start)
}

func (c VehicleClosure) DisplayName() string {
	if c.StartDate.Equal(c.EndDate) {
		return fmt.Sprintf("%s (%s)", c.StartDate.Format("02.01.2006"), c.Reason.Label())
	}
	return fmt.Sprintf("%s → %s (%s)",
		c.StartDate.Format("02.01.2006"), c.EndDate.Format("02.01.2006"), c.Reason.Label())
}
