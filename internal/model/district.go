package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DistrictSide string

const (
	DistrictSideEast         DistrictSide = "EAST"
	DistrictSideWest         DistrictSide = "WEST"
	DistrictSideUndetermined DistrictSide = "UNDETERMINED"
)

func (s DistrictSide) Label() string {
	switch s {
	case DistrictSideEast:
		return "Anadolu Yakası"
	case DistrictSideWest:
		return "Avrupa Yakası"
	default:
		return "Belirsiz"
	}
}

type SpecialStatus string

const (
	SpecialStatusNormal  SpecialStatus = "NORMAL"
	SpecialStatusBusy    SpecialStatus = "BUSY"
	SpecialStatusClosed  SpecialStatus = "CLOSED"
	SpecialStatusSpecial SpecialStatus = "SPECIAL"
)

// Istanbul districts by city side. The side of a district is derived from
// this table, not stored by hand, so a renamed record cannot drift.
var eastSideDistricts = []string{
	"Maltepe", "Kartal", "Pendik", "Tuzla", "Üsküdar", "Kadıköy", "Ataşehir",
	"Ümraniye", "Sancaktepe", "Çekmeköy", "Beykoz", "Şile", "Sultanbeyli",
}

var westSideDistricts = []string{
	"Beyoğlu", "Şişli", "Beşiktaş", "Kağıthane", "Sarıyer", "Bakırköy",
	"Bahçelievler", "Güngören", "Esenler", "Bağcılar", "Eyüpsultan",
	"Gaziosmanpaşa", "Küçükçekmece", "Avcılar", "Başakşehir", "Sultangazi",
	"Arnavutköy", "Fatih", "Zeytinburnu", "Bayrampaşa", "Esenyurt",
	"Beylikdüzü", "Silivri", "Çatalca", "Büyükçekmece",
}

// SideForDistrictName classifies a district name by the fixed Istanbul
// lookup. Unknown names are UNDETERMINED.
func SideForDistrictName(name string) DistrictSide {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return DistrictSideUndetermined
	}
	for _, d := range eastSideDistricts {
		if strings.Contains(lower, strings.ToLower(d)) {
			return DistrictSideEast
		}
	}
	for _, d := range westSideDistricts {
		if strings.Contains(lower, strings.ToLower(d)) {
			return DistrictSideWest
		}
	}
	return DistrictSideUndetermined
}

// IstanbulDistrictNames returns the seed list, east side first.
func IstanbulDistrictNames() []string {
	names := make([]string, 0, len(eastSideDistricts)+len(westSideDistricts))
	names = append(names, eastSideDistricts...)
	names = append(names, westSideDistricts...)
	return names
}

type District struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name            string        `gorm:"type:varchar(128);not null;uniqueIndex" json:"name"`
	Side            DistrictSide  `gorm:"type:district_side;not null;default:'UNDETERMINED'" json:"side"`
	Active          bool          `gorm:"not null;default:true" json:"active"`
	DeliveryEnabled bool          `gorm:"not null;default:true" json:"delivery_enabled"`
	DeliveryDays    int           `gorm:"not null;default:1" json:"delivery_days"`
	SpecialStatus   SpecialStatus `gorm:"type:special_status;not null;default:'NORMAL'" json:"special_status"`
	Latitude        float64       `json:"latitude"`
	Longitude       float64       `json:"longitude"`
	PostalCode      string        `gorm:"type:varchar(16)" json:"postal_code"`
	Notes           string        `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (District) TableName() string {
	return "districts"
}

func (d *District) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Side == "" || d.Side == DistrictSideUndetermined {
		d.Side = SideForDistrictName(d.Name)
	}
	return nil
}
