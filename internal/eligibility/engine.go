// Package eligibility implements the district-day-vehicle admissibility and
// capacity rules. It is a pure decision layer: reads go through the Store
// interface, the current time through Clock, and nothing here writes state.
//
// Capacity is recomputed from live document counts on every check instead of
// being cached, because documents are cancelled and edited concurrently and a
// stale counter would allow undetected overbooking. The flip side is a known
// race: two validations running at limit-1 can both pass and land one
// document over the cap. There is no reservation step; the capacity-approval
// workflow absorbs the overflow case.
package eligibility

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"delivery-service/internal/model"
)

// CountFilter selects the non-cancelled delivery documents to count.
type CountFilter struct {
	Date       time.Time
	VehicleID  *uuid.UUID
	DistrictID *uuid.UUID
	ExcludeID  *uuid.UUID
}

// Store is the narrow read surface the engine needs from persistence.
type Store interface {
	// WeekDayByCode returns nil (no error) when the weekday is not defined.
	WeekDayByCode(ctx context.Context, code model.WeekDayCode) (*model.WeekDay, error)
	// GeneralAssignment returns the NULL-dated (weekly) capacity rule for a
	// weekday/district pair, or nil when the pair is not served.
	GeneralAssignment(ctx context.Context, weekDayID, districtID uuid.UUID) (*model.DayDistrictAssignment, error)
	// CountDeliveries counts non-cancelled documents matching the filter.
	CountDeliveries(ctx context.Context, f CountFilter) (int, error)
	// ActiveClosure returns the active closure covering the date, or nil.
	ActiveClosure(ctx context.Context, vehicleID uuid.UUID, date time.Time) (*model.VehicleClosure, error)
}

type Engine struct {
	store      Store
	clock      Clock
	cutoffHour int
}

func New(store Store, clock Clock, cutoffHour int) *Engine {
	return &Engine{store: store, clock: clock, cutoffHour: cutoffHour}
}

// DayEligibility is the structured answer to "can this date take a
// delivery". Reason is operator-facing.
type DayEligibility struct {
	Available         bool      `json:"available"`
	Reason            string    `json:"reason"`
	DayName           string    `json:"day_name,omitempty"`
	RemainingCapacity int       `json:"remaining_capacity"`
	DistrictCapacity  *int      `json:"district_capacity,omitempty"`
	WeekDayID         uuid.UUID `json:"-"`
}

func unavailable(reason string) DayEligibility {
	return DayEligibility{Available: false, Reason: reason}
}

// CheckDayEligibility decides whether the calendar date (optionally narrowed
// to a district) may take deliveries. Checks run in order and stop at the
// first failure; no state is touched, so identical inputs give identical
// results.
func (e *Engine) CheckDayEligibility(ctx context.Context, date time.Time, district *model.District) (DayEligibility, error) {
	code := model.WeekDayCodeFor(date)

	day, err := e.store.WeekDayByCode(ctx, code)
	if err != nil {
		return DayEligibility{}, err
	}
	if day == nil {
		return unavailable(code.Label() + " günü teslimat programında tanımlı değil"), nil
	}
	if !day.Active {
		return unavailable(day.Name + " günü teslimata kapalı"), nil
	}
	if day.ClosedOn(date) {
		if day.ClosureStart != nil && day.ClosureEnd != nil {
			return unavailable(day.Name + " günü " +
				day.ClosureStart.Format("02.01.2006") + " - " +
				day.ClosureEnd.Format("02.01.2006") + " tarihleri arasında kapatılmış"), nil
		}
		return unavailable(day.Name + " günü geçici olarak kapatılmış"), nil
	}

	var assignment *model.DayDistrictAssignment
	if district != nil {
		assignment, err = e.store.GeneralAssignment(ctx, day.ID, district.ID)
		if err != nil {
			return DayEligibility{}, err
		}
		if assignment == nil {
			return unavailable(district.Name + " ilçesine " + day.Name + " günü teslimat yapılamaz"), nil
		}
	}

	count, err := e.store.CountDeliveries(ctx, CountFilter{Date: date})
	if err != nil {
		return DayEligibility{}, err
	}
	if count >= day.DailyMax {
		result := unavailable("Günlük genel kapasite dolu (" +
			strconv.Itoa(count) + "/" + strconv.Itoa(day.DailyMax) + ")")
		result.DayName = day.Name
		return result, nil
	}

	result := DayEligibility{
		Available:         true,
		Reason:            "Müsait",
		DayName:           day.Name,
		RemainingCapacity: day.DailyMax - count,
		WeekDayID:         day.ID,
	}
	if assignment != nil {
		remaining := assignment.RemainingCapacity()
		result.DistrictCapacity = &remaining
	}
	return result, nil
}

// CheckVehicleCapacity verifies one more delivery fits the vehicle on the
// date. The effective limit is the vehicle's daily limit, tightened by the
// district-day assignment maximum when a district is given and an assignment
// exists. The count excludes cancelled documents and, when editing, the
// document being validated.
func (e *Engine) CheckVehicleCapacity(ctx context.Context, vehicle *model.Vehicle, date time.Time, district *model.District, excludingID *uuid.UUID) error {
	filter := CountFilter{Date: date, VehicleID: &vehicle.ID, ExcludeID: excludingID}
	if district != nil {
		filter.DistrictID = &district.ID
	}
	count, err := e.store.CountDeliveries(ctx, filter)
	if err != nil {
		return err
	}

	limit := vehicle.DailyLimit
	if district != nil {
		day, err := e.store.WeekDayByCode(ctx, model.WeekDayCodeFor(date))
		if err != nil {
			return err
		}
		if day != nil {
			assignment, err := e.store.GeneralAssignment(ctx, day.ID, district.ID)
			if err != nil {
				return err
			}
			if assignment != nil && assignment.MaxDeliveries < limit {
				limit = assignment.MaxDeliveries
			}
		}
	}

	if count+1 > limit {
		where := vehicle.Name
		if district != nil {
			where += " - " + district.Name
		}
		return &RuleError{
			Code: RuleVehicleCapacity,
			Message: "Araç kapasitesi dolu! " + where + ", " +
				date.Format("02.01.2006") + ", kapasite " + strconv.Itoa(count) + "/" + strconv.Itoa(limit) +
				". Farklı bir tarih veya araç seçin.",
			Count: count,
			Limit: limit,
		}
	}
	return nil
}

// CheckVehicleDistrictCompatibility enforces the side-of-city rule. Small
// vehicles pass unconditionally; side-bound vehicles must match the district
// side exactly.
func (e *Engine) CheckVehicleDistrictCompatibility(vehicle *model.Vehicle, district *model.District) error {
	if vehicle.Category.IsSmall() {
		return nil
	}
	if vehicle.Category.Side() == district.Side {
		return nil
	}
	return ruleErrorf(RuleVehicleDistrictMismatch,
		"Araç-ilçe uyumsuzluğu! %s aracı %s tarafında çalışır, %s ilçesi %s tarafındadır.",
		vehicle.Name, vehicle.Category.Side().Label(), district.Name, district.Side.Label())
}

// CheckVehicleClosure reports whether an active closure covers the date.
// bypass skips the check wholesale; callers set it from the manager role so
// the override is visible here rather than buried in an authorization layer.
func (e *Engine) CheckVehicleClosure(ctx context.Context, vehicleID uuid.UUID, date time.Time, bypass bool) (bool, *model.VehicleClosure, error) {
	if bypass {
		return false, nil, nil
	}
	closure, err := e.store.ActiveClosure(ctx, vehicleID, date)
	if err != nil {
		return false, nil, err
	}
	if closure == nil {
		return false, nil, nil
	}
	return true, closure, nil
}

// Actor carries the caller capabilities the rules depend on, resolved by the
// host's authorization layer before the engine is invoked.
type Actor struct {
	IsManager bool
}

// DeliveryInput is a delivery document reduced to the fields the rules read.
type DeliveryInput struct {
	ID       *uuid.UUID // set when revalidating an existing document
	Date     time.Time
	Vehicle  *model.Vehicle
	District *model.District
}

// ValidateDelivery runs every scheduling rule in fixed order and stops at
// the first violation. The Sunday blackout holds for managers too. Managers
// and small vehicles skip the district-weekday and side-compatibility rules;
// managers additionally skip the district-day capacity rule (that overflow
// goes through the approval workflow instead).
func (e *Engine) ValidateDelivery(ctx context.Context, input DeliveryInput, actor Actor) error {
	now := e.clock.Now()
	today := DateOnly(now)
	date := DateOnly(input.Date)

	if date.Before(today) {
		return ruleErrorf(RulePastDate,
			"Geçmiş tarihe teslimat planlanamaz! Teslimat tarihi: %s, bugün: %s.",
			date.Format("02.01.2006"), today.Format("02.01.2006"))
	}

	if SameDate(date, now) && now.Hour() >= e.cutoffHour {
		return ruleErrorf(RuleSameDayCutoff,
			"Aynı gün teslimat yazılamaz! İstanbul saati %02d:%02d, saat %02d:00'dan sonra bugüne teslimat planlanamaz.",
			now.Hour(), now.Minute(), e.cutoffHour)
	}

	if model.WeekDayCodeFor(date) == model.WeekDaySunday {
		return ruleErrorf(RuleSundayBlackout,
			"Pazar günü teslimat yapılamaz! Tüm araçlar pazar günü kapalıdır. Lütfen başka bir tarih seçin.")
	}

	closed, closure, err := e.CheckVehicleClosure(ctx, input.Vehicle.ID, date, false)
	if err != nil {
		return err
	}
	if closed {
		return ruleErrorf(RuleVehicleClosed,
			"Bu tarihte araç kapalı! Araç: %s, tarih: %s, sebep: %s.",
			input.Vehicle.Name, date.Format("02.01.2006"), closure.Reason.Label())
	}

	skipDistrictRules := actor.IsManager || input.Vehicle.Category.IsSmall()

	checkDistrict := input.District
	if skipDistrictRules {
		checkDistrict = nil
	}
	day, err := e.CheckDayEligibility(ctx, date, checkDistrict)
	if err != nil {
		return err
	}
	if !day.Available {
		return &RuleError{Code: RuleDayUnavailable, Message: day.Reason}
	}

	if !skipDistrictRules && input.District != nil {
		if err := e.CheckVehicleDistrictCompatibility(input.Vehicle, input.District); err != nil {
			return err
		}
	}

	if err := e.CheckVehicleCapacity(ctx, input.Vehicle, date, input.District, input.ID); err != nil {
		return err
	}

	if !actor.IsManager && input.District != nil {
		if err := e.checkDistrictDayCapacity(ctx, input, date); err != nil {
			return err
		}
	}

	return nil
}

// checkDistrictDayCapacity re-applies the district-day assignment maximum
// against a live recount, so a record saved by someone else since the form
// was opened still blocks this save.
func (e *Engine) checkDistrictDayCapacity(ctx context.Context, input DeliveryInput, date time.Time) error {
	day, err := e.store.WeekDayByCode(ctx, model.WeekDayCodeFor(date))
	if err != nil || day == nil {
		return err
	}
	assignment, err := e.store.GeneralAssignment(ctx, day.ID, input.District.ID)
	if err != nil || assignment == nil {
		return err
	}

	count, err := e.store.CountDeliveries(ctx, CountFilter{
		Date:       date,
		VehicleID:  &input.Vehicle.ID,
		DistrictID: &input.District.ID,
		ExcludeID:  input.ID,
	})
	if err != nil {
		return err
	}
	if count+1 > assignment.MaxDeliveries {
		return &RuleError{
			Code: RuleDistrictDayCapacity,
			Message: "İlçe-gün kapasitesi dolu! " + input.District.Name + ", " +
				date.Format("02.01.2006") + ", kapasite " + strconv.Itoa(count) + "/" + strconv.Itoa(assignment.MaxDeliveries) +
				". Sayfayı yenileyip güncel kapasiteye göre farklı bir gün seçin.",
			Count: count,
			Limit: assignment.MaxDeliveries,
		}
	}
	return nil
}
