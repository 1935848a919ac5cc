package model

import (
	"time"

	"github.com/google/uuid"
)

type VehicleBrief struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Category VehicleCategory `json:"category"`
}

type DistrictBrief struct {
	ID   uuid.UUID    `json:"id"`
	Name string       `json:"name"`
	Side DistrictSide `json:"side"`
}

type DeliveryRecord struct {
	Delivery        DeliveryDocument `json:"delivery"`
	Vehicle         *VehicleBrief    `json:"vehicle"`
	District        *DistrictBrief   `json:"district"`
	PendingApproval *ApprovalBrief   `json:"pending_approval"`
}

type ApprovalBrief struct {
	ID        uuid.UUID      `json:"id"`
	Number    string         `json:"number"`
	Status    ApprovalStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

type ApprovalRecord struct {
	Approval CapacityApprovalRequest `json:"approval"`
	Delivery *DeliveryDocument       `json:"delivery"`
	Vehicle  *VehicleBrief           `json:"vehicle"`
	District *DistrictBrief          `json:"district"`
}

// DateAvailability is one entry of the availability forecast.
type DateAvailability struct {
	Date              time.Time `json:"date"`
	DayName           string    `json:"day_name"`
	RemainingCapacity int       `json:"remaining_capacity"`
	DistrictCapacity  *int      `json:"district_capacity,omitempty"`
}

// VehicleSuggestion ranks a vehicle for a planned delivery.
type VehicleSuggestion struct {
	Vehicle           VehicleBrief `json:"vehicle"`
	DailyLimit        int          `json:"daily_limit"`
	BookedCount       int          `json:"booked_count"`
	RemainingCapacity int          `json:"remaining_capacity"`
}
