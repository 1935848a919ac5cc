package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideForDistrictName(t *testing.T) {
	cases := []struct {
		name string
		side DistrictSide
	}{
		{"Kadıköy", DistrictSideEast},
		{"Üsküdar", DistrictSideEast},
		{"Pendik", DistrictSideEast},
		{"Bakırköy", DistrictSideWest},
		{"Beşiktaş", DistrictSideWest},
		{"Esenyurt", DistrictSideWest},
		{"kadıköy", DistrictSideEast},        // case-insensitive
		{"Kadıköy Merkez", DistrictSideEast}, // contains match
		{"Ankara", DistrictSideUndetermined},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.side, SideForDistrictName(tc.name), tc.name)
	}
}

func TestIstanbulDistrictCounts(t *testing.T) {
	east, west := 0, 0
	for _, name := range IstanbulDistrictNames() {
		switch SideForDistrictName(name) {
		case DistrictSideEast:
			east++
		case DistrictSideWest:
			west++
		default:
			t.Fatalf("district %q has no side", name)
		}
	}
	assert.Equal(t, 13, east)
	assert.Equal(t, 25, west)
}

func TestWeekDayCodeFor(t *testing.T) {
	monday := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	codes := []WeekDayCode{
		WeekDayMonday, WeekDayTuesday, WeekDayWednesday, WeekDayThursday,
		WeekDayFriday, WeekDaySaturday, WeekDaySunday,
	}
	for i, want := range codes {
		assert.Equal(t, want, WeekDayCodeFor(monday.AddDate(0, 0, i)))
	}
}

func TestVehicleCategorySmallAndSide(t *testing.T) {
	assert.True(t, VehicleCategorySmall1.IsSmall())
	assert.True(t, VehicleCategorySmall2.IsSmall())
	assert.True(t, VehicleCategoryExtra.IsSmall())
	assert.False(t, VehicleCategoryEastSide.IsSmall())
	assert.False(t, VehicleCategoryWestSide.IsSmall())

	assert.Equal(t, DistrictSideEast, VehicleCategoryEastSide.Side())
	assert.Equal(t, DistrictSideWest, VehicleCategoryWestSide.Side())
	assert.Equal(t, DistrictSideUndetermined, VehicleCategorySmall1.Side())
}

func TestVehicleServesDistrict(t *testing.T) {
	east := District{Name: "Kadıköy", Side: DistrictSideEast}
	west := District{Name: "Bakırköy", Side: DistrictSideWest}

	eastTruck := Vehicle{Category: VehicleCategoryEastSide}
	assert.True(t, eastTruck.ServesDistrict(east))
	assert.False(t, eastTruck.ServesDistrict(west))

	small := Vehicle{Category: VehicleCategorySmall2}
	assert.True(t, small.ServesDistrict(east))
	assert.True(t, small.ServesDistrict(west))
}

func TestDeliveryStatusTransitions(t *testing.T) {
	assert.True(t, DeliveryStatusDraft.CanTransitionTo(DeliveryStatusReady))
	assert.True(t, DeliveryStatusReady.CanTransitionTo(DeliveryStatusInTransit))
	assert.True(t, DeliveryStatusInTransit.CanTransitionTo(DeliveryStatusDelivered))

	// Cancel is allowed from every non-terminal state.
	for _, s := range []DeliveryStatus{DeliveryStatusDraft, DeliveryStatusReady, DeliveryStatusInTransit} {
		assert.True(t, s.CanTransitionTo(DeliveryStatusCancelled), string(s))
	}

	// No way out of a terminal state, no skipping forward.
	assert.False(t, DeliveryStatusDelivered.CanTransitionTo(DeliveryStatusCancelled))
	assert.False(t, DeliveryStatusCancelled.CanTransitionTo(DeliveryStatusReady))
	assert.False(t, DeliveryStatusReady.CanTransitionTo(DeliveryStatusDelivered))
	assert.False(t, DeliveryStatusDraft.CanTransitionTo(DeliveryStatusInTransit))
}

func TestDeliveryStatusCountsAgainstCapacity(t *testing.T) {
	assert.True(t, DeliveryStatusDraft.CountsAgainstCapacity())
	assert.True(t, DeliveryStatusReady.CountsAgainstCapacity())
	assert.True(t, DeliveryStatusInTransit.CountsAgainstCapacity())
	assert.True(t, DeliveryStatusDelivered.CountsAgainstCapacity())
	assert.False(t, DeliveryStatusCancelled.CountsAgainstCapacity())
}

func TestDeliveryPhonePrecedence(t *testing.T) {
	doc := DeliveryDocument{CustomerPhone: "+905551112233"}
	assert.Equal(t, "+905551112233", doc.Phone())

	doc.ManualPhone = "+905559998877"
	assert.Equal(t, "+905559998877", doc.Phone())
}

func TestVehicleClosureRange(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
	}
	closure := VehicleClosure{StartDate: day(1), EndDate: day(5)}

	assert.True(t, closure.Contains(day(1)))
	assert.True(t, closure.Contains(day(3)))
	assert.True(t, closure.Contains(day(5)))
	assert.False(t, closure.Contains(day(6)))

	assert.Equal(t, 5, closure.Days())

	assert.True(t, closure.Overlaps(day(5), day(10)))
	assert.True(t, closure.Overlaps(day(3), day(4)))
	assert.False(t, closure.Overlaps(day(6), day(10)))
}

func TestWeekDayClosedOn(t *testing.T) {
	day := WeekDay{Active: true}
	date := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.False(t, day.ClosedOn(date))

	day.TemporaryClosed = true
	assert.True(t, day.ClosedOn(date))

	day.TemporaryClosed = false
	start := date
	end := date.AddDate(0, 0, 2)
	day.ClosureStart = &start
	day.ClosureEnd = &end
	assert.True(t, day.ClosedOn(date.AddDate(0, 0, 1)))
	assert.False(t, day.ClosedOn(date.AddDate(0, 0, 3)))
}

func TestAssignmentRemainingCapacity(t *testing.T) {
	a := DayDistrictAssignment{MaxDeliveries: 10, DeliveryCount: 4}
	require.Equal(t, 6, a.RemainingCapacity())
}
