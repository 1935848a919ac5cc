package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WeekDayCode string

const (
	WeekDayMonday    WeekDayCode = "MONDAY"
	WeekDayTuesday   WeekDayCode = "TUESDAY"
	WeekDayWednesday WeekDayCode = "WEDNESDAY"
	WeekDayThursday  WeekDayCode = "THURSDAY"
	WeekDayFriday    WeekDayCode = "FRIDAY"
	WeekDaySaturday  WeekDayCode = "SATURDAY"
	WeekDaySunday    WeekDayCode = "SUNDAY"
)

// weekDayCodes indexed by time.Weekday with Monday=0..Sunday=6.
var weekDayCodes = [7]WeekDayCode{
	WeekDayMonday, WeekDayTuesday, WeekDayWednesday, WeekDayThursday,
	WeekDayFriday, WeekDaySaturday, WeekDaySunday,
}

// WeekDayCodeFor maps a calendar date to its weekday code using the
// Monday=0..Sunday=6 convention.
func WeekDayCodeFor(date time.Time) WeekDayCode {
	// time.Weekday has Sunday=0; shift to Monday=0.
	idx := (int(date.Weekday()) + 6) % 7
	return weekDayCodes[idx]
}

func (c WeekDayCode) Label() string {
	switch c {
	case WeekDayMonday:
		return "Pazartesi"
	case WeekDayTuesday:
		return "Salı"
	case WeekDayWednesday:
		return "Çarşamba"
	case WeekDayThursday:
		return "Perşembe"
	case WeekDayFriday:
		return "Cuma"
	case WeekDaySaturday:
		return "Cumartesi"
	case WeekDaySunday:
		return "Pazar"
	default:
		return string(c)
	}
}

type WeekDay struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Code            WeekDayCode `gorm:"type:weekday_code;not null;uniqueIndex" json:"code"`
	Name            string      `gorm:"type:varchar(32);not null" json:"name"`
	Sequence        int         `gorm:"not null;default:10" json:"sequence"`
	Active          bool        `gorm:"not null;default:true" json:"active"`
	TemporaryClosed bool        `gorm:"not null;default:false" json:"temporary_closed"`
	ClosureReason   string      `gorm:"type:text" json:"closure_reason"`
	ClosureStart    *time.Time  `gorm:"type:date" json:"closure_start"`
	ClosureEnd      *time.Time  `gorm:"type:date" json:"closure_end"`
	DailyMax        int         `gorm:"not null;default:7" json:"daily_max"`
	CreatedAt       time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Assignments []DayDistrictAssignment `gorm:"foreignKey:WeekDayID" json:"assignments,omitempty"`
}

func (WeekDay) TableName() string {
	return "week_days"
}

func (d *WeekDay) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// ClosedOn reports whether the weekday is shut on the given date, either by
// the blanket flag or by an inclusive closure date range.
func (d WeekDay) ClosedOn(date time.Time) bool {
	if d.TemporaryClosed {
		return true
	}
	if d.ClosureStart != nil && d.ClosureEnd != nil {
		if !date.Before(*d.ClosureStart) && !date.After(*d.ClosureEnd) {
			return true
		}
	}
	return false
}

// DayDistrictAssignment is the capacity record governing how many deliveries
// a district may receive on a weekday. EffectiveDate nil means the general
// weekly rule; a dated row overrides it for that date only.
type DayDistrictAssignment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	WeekDayID     uuid.UUID     `gorm:"type:uuid;not null" json:"week_day_id"`
	DistrictID    uuid.UUID     `gorm:"type:uuid;not null" json:"district_id"`
	EffectiveDate *time.Time    `gorm:"type:date" json:"effective_date"`
	MaxDeliveries int           `gorm:"not null;default:10" json:"max_deliveries"`
	DeliveryCount int           `gorm:"not null;default:0" json:"delivery_count"`
	SpecialStatus SpecialStatus `gorm:"type:special_status;not null;default:'NORMAL'" json:"special_status"`
	Notes         string        `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	WeekDay  *WeekDay  `gorm:"foreignKey:WeekDayID" json:"week_day,omitempty"`
	District *District `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
}

func (DayDistrictAssignment) TableName() string {
	return "day_district_assignments"
}

func (a *DayDistrictAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a DayDistrictAssignment) RemainingCapacity() int {
	return a.MaxDeliveries - a.DeliveryCount
}
