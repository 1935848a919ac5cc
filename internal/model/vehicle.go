package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleCategory string

const (
	VehicleCategoryEastSide VehicleCategory = "EAST_SIDE"
	VehicleCategoryWestSide VehicleCategory = "WEST_SIDE"
	VehicleCategorySmall1   VehicleCategory = "SMALL_1"
	VehicleCategorySmall2   VehicleCategory = "SMALL_2"
	VehicleCategoryExtra    VehicleCategory = "EXTRA"
)

// IsSmall reports whether the category is exempt from side-of-city and
// district-eligibility restrictions.
func (c VehicleCategory) IsSmall() bool {
	return c == VehicleCategorySmall1 || c == VehicleCategorySmall2 || c == VehicleCategoryExtra
}

// Side returns the city side a side-bound vehicle serves, or
// DistrictSideUndetermined for small vehicles.
func (c VehicleCategory) Side() DistrictSide {
	switch c {
	case VehicleCategoryEastSide:
		return DistrictSideEast
	case VehicleCategoryWestSide:
		return DistrictSideWest
	default:
		return DistrictSideUndetermined
	}
}

type Vehicle struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name            string          `gorm:"type:varchar(128);not null" json:"name"`
	Category        VehicleCategory `gorm:"type:vehicle_category;not null" json:"category"`
	DailyLimit      int             `gorm:"not null;default:7" json:"daily_limit"`
	Active          bool            `gorm:"not null;default:true" json:"active"`
	TemporaryClosed bool            `gorm:"not null;default:false" json:"temporary_closed"`
	ClosureReason   string          `gorm:"type:text" json:"closure_reason"`
	ClosureStart    *time.Time      `gorm:"type:date" json:"closure_start"`
	ClosureEnd      *time.Time      `gorm:"type:date" json:"closure_end"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Districts []District `gorm:"many2many:vehicle_districts" json:"districts,omitempty"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// ServesDistrict reports whether the vehicle may deliver to the district.
// Small vehicles serve every district; side-bound vehicles only their own
// side of the city.
func (v Vehicle) ServesDistrict(d District) bool {
	if v.Category.IsSmall() {
		return true
	}
	return v.Category.Side() == d.Side
}
