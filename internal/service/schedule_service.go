package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/model"
	"delivery-service/internal/repository"
)

type ScheduleService struct {
	scheduleRepo ScheduleStore
	districtRepo DistrictStore
	engine       *eligibility.Engine
	clock        eligibility.Clock
}

func NewScheduleService(
	scheduleRepo ScheduleStore,
	districtRepo DistrictStore,
	engine *eligibility.Engine,
	clock eligibility.Clock,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		districtRepo: districtRepo,
		engine:       engine,
		clock:        clock,
	}
}

func (s *ScheduleService) ListWeekDays(ctx context.Context, principal model.Principal) ([]model.WeekDay, error) {
	return s.scheduleRepo.ListWeekDays(ctx)
}

type UpdateWeekDayInput struct {
	Active          *bool
	TemporaryClosed *bool
	ClosureReason   *string
	ClosureStart    *time.Time
	ClosureEnd      *time.Time
	DailyMax        *int
}

// UpdateWeekDay adjusts a weekday's availability. Manager only. A closure
// range needs both bounds, end not before start.
func (s *ScheduleService) UpdateWeekDay(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateWeekDayInput) (*model.WeekDay, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.scheduleRepo.GetWeekDay(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Active != nil {
		fields["active"] = *input.Active
	}
	if input.TemporaryClosed != nil {
		fields["temporary_closed"] = *input.TemporaryClosed
	}
	if input.ClosureReason != nil {
		fields["closure_reason"] = *input.ClosureReason
	}
	if input.ClosureStart != nil || input.ClosureEnd != nil {
		if input.ClosureStart == nil || input.ClosureEnd == nil {
			return nil, ErrInvalidInput
		}
		start := eligibility.DateOnly(*input.ClosureStart)
		end := eligibility.DateOnly(*input.ClosureEnd)
		if end.Before(start) {
			return nil, ErrInvalidInput
		}
		fields["closure_start"] = start
		fields["closure_end"] = end
	}
	if input.DailyMax != nil {
		if *input.DailyMax < 1 {
			return nil, ErrInvalidInput
		}
		fields["daily_max"] = *input.DailyMax
	}
	if len(fields) > 0 {
		if err := s.scheduleRepo.UpdateWeekDay(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.scheduleRepo.GetWeekDay(ctx, id)
}

func (s *ScheduleService) ListAssignments(ctx context.Context, principal model.Principal, weekDayID, districtID *uuid.UUID) ([]model.DayDistrictAssignment, error) {
	return s.scheduleRepo.ListAssignments(ctx, weekDayID, districtID)
}

type AssignmentInput struct {
	WeekDayID     uuid.UUID
	DistrictID    uuid.UUID
	EffectiveDate *time.Time
	MaxDeliveries int
	SpecialStatus model.SpecialStatus
	Notes         string
}

// UpsertAssignment creates or updates the capacity rule for a weekday-district
// pair. A nil effective date targets the general weekly rule; the pair plus
// date is unique. Manager only.
func (s *ScheduleService) UpsertAssignment(ctx context.Context, principal model.Principal, input AssignmentInput) (*model.DayDistrictAssignment, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	if input.MaxDeliveries < 1 {
		return nil, ErrInvalidInput
	}

	if _, err := s.scheduleRepo.GetWeekDay(ctx, input.WeekDayID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.districtRepo.GetByID(ctx, input.DistrictID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var existing *model.DayDistrictAssignment
	var err error
	if input.EffectiveDate == nil {
		existing, err = s.scheduleRepo.GeneralAssignment(ctx, input.WeekDayID, input.DistrictID)
	} else {
		date := eligibility.DateOnly(*input.EffectiveDate)
		input.EffectiveDate = &date
		existing, err = s.scheduleRepo.DatedAssignment(ctx, input.WeekDayID, input.DistrictID, date)
	}
	if err != nil {
		return nil, err
	}

	status := input.SpecialStatus
	if status == "" {
		status = model.SpecialStatusNormal
	}

	if existing != nil {
		if input.MaxDeliveries < existing.DeliveryCount {
			return nil, ErrInvalidInput
		}
		fields := map[string]interface{}{
			"max_deliveries": input.MaxDeliveries,
			"special_status": status,
		}
		if strings.TrimSpace(input.Notes) != "" {
			fields["notes"] = input.Notes
		}
		if err := s.scheduleRepo.UpdateAssignment(ctx, existing.ID, fields); err != nil {
			return nil, err
		}
		existing.MaxDeliveries = input.MaxDeliveries
		existing.SpecialStatus = status
		return existing, nil
	}

	assignment := &model.DayDistrictAssignment{
		WeekDayID:     input.WeekDayID,
		DistrictID:    input.DistrictID,
		EffectiveDate: input.EffectiveDate,
		MaxDeliveries: input.MaxDeliveries,
		SpecialStatus: status,
		Notes:         input.Notes,
	}
	if err := s.scheduleRepo.CreateAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *ScheduleService) DeleteAssignment(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsManager() {
		return ErrPermissionDenied
	}
	return s.scheduleRepo.DeleteAssignment(ctx, id)
}

// Availability forecasts bookable dates, optionally narrowed to a district.
// A zero from starts the window at the business clock's today.
func (s *ScheduleService) Availability(ctx context.Context, principal model.Principal, districtID *uuid.UUID, from time.Time, days int) ([]model.DateAvailability, error) {
	if from.IsZero() {
		from = s.clock.Now()
	}
	var district *model.District
	if districtID != nil {
		var err error
		district, err = s.districtRepo.GetByID(ctx, *districtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}
	if days <= 0 || days > eligibility.DefaultForecastHorizonDays {
		days = eligibility.DefaultForecastHorizonDays
	}
	start := eligibility.DateOnly(from)
	end := start.AddDate(0, 0, days-1)
	return s.engine.AvailableDates(ctx, start, end, district, days)
}

func (s *ScheduleService) ListDistricts(ctx context.Context, principal model.Principal, filter repository.DistrictFilter) ([]model.District, error) {
	return s.districtRepo.List(ctx, filter)
}

type CreateDistrictInput struct {
	Name string
	Side model.DistrictSide
}

func (s *ScheduleService) CreateDistrict(ctx context.Context, principal model.Principal, input CreateDistrictInput) (*model.District, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.districtRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	district := &model.District{
		Name:            name,
		Side:            input.Side,
		Active:          true,
		DeliveryEnabled: true,
	}
	if err := s.districtRepo.Create(ctx, district); err != nil {
		return nil, err
	}
	return district, nil
}

type UpdateDistrictInput struct {
	Side            *model.DistrictSide
	Active          *bool
	DeliveryEnabled *bool
}

func (s *ScheduleService) UpdateDistrict(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateDistrictInput) (*model.District, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.districtRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Side != nil {
		fields["side"] = *input.Side
	}
	if input.Active != nil {
		fields["active"] = *input.Active
	}
	if input.DeliveryEnabled != nil {
		fields["delivery_enabled"] = *input.DeliveryEnabled
	}
	if len(fields) > 0 {
		if err := s.districtRepo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.districtRepo.GetByID(ctx, id)
}

// SeedDistricts loads the standard Istanbul district list, creating only the
// missing rows. Manager only.
func (s *ScheduleService) SeedDistricts(ctx context.Context, principal model.Principal) (int, error) {
	if !principal.IsManager() {
		return 0, ErrPermissionDenied
	}
	return s.districtRepo.SeedIstanbul(ctx)
}
