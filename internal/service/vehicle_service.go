package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/model"
	"delivery-service/internal/repository"
)

type VehicleService struct {
	vehicleRepo  VehicleStore
	districtRepo DistrictStore
	closureRepo  ClosureStore
	clock        eligibility.Clock
	defaultLimit int
}

func NewVehicleService(
	vehicleRepo VehicleStore,
	districtRepo DistrictStore,
	closureRepo ClosureStore,
	clock eligibility.Clock,
	defaultLimit int,
) *VehicleService {
	return &VehicleService{
		vehicleRepo:  vehicleRepo,
		districtRepo: districtRepo,
		closureRepo:  closureRepo,
		clock:        clock,
		defaultLimit: defaultLimit,
	}
}

func (s *VehicleService) List(ctx context.Context, principal model.Principal, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	return s.vehicleRepo.List(ctx, filter)
}

func (s *VehicleService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

type CreateVehicleInput struct {
	Name       string
	Category   model.VehicleCategory
	DailyLimit int
}

// Create registers a vehicle and auto-assigns its serviceable districts:
// every district for small categories, the matching side otherwise.
func (s *VehicleService) Create(ctx context.Context, principal model.Principal, input CreateVehicleInput) (*model.Vehicle, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}
	limit := input.DailyLimit
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 1 {
		return nil, ErrInvalidInput
	}

	vehicle := &model.Vehicle{
		Name:       strings.TrimSpace(input.Name),
		Category:   input.Category,
		DailyLimit: limit,
		Active:     true,
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	if err := s.syncDistricts(ctx, vehicle); err != nil {
		return nil, err
	}
	return s.vehicleRepo.GetByID(ctx, vehicle.ID)
}

type UpdateVehicleInput struct {
	Name       *string
	Category   *model.VehicleCategory
	DailyLimit *int
	Active     *bool
}

func (s *VehicleService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateVehicleInput) (*model.Vehicle, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	vehicle, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidInput
		}
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	categoryChanged := false
	if input.Category != nil && *input.Category != vehicle.Category {
		fields["category"] = *input.Category
		categoryChanged = true
	}
	if input.DailyLimit != nil {
		if *input.DailyLimit < 1 {
			return nil, ErrInvalidInput
		}
		fields["daily_limit"] = *input.DailyLimit
	}
	if input.Active != nil {
		fields["active"] = *input.Active
	}
	if len(fields) > 0 {
		if err := s.vehicleRepo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	if categoryChanged {
		vehicle.Category = *input.Category
		if err := s.syncDistricts(ctx, vehicle); err != nil {
			return nil, err
		}
	}
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *VehicleService) syncDistricts(ctx context.Context, vehicle *model.Vehicle) error {
	filter := repository.DistrictFilter{ActiveOnly: true}
	if side := vehicle.Category.Side(); side != model.DistrictSideUndetermined {
		filter.Side = &side
	}
	districts, err := s.districtRepo.List(ctx, filter)
	if err != nil {
		return err
	}
	return s.vehicleRepo.ReplaceDistricts(ctx, vehicle, districts)
}

type CreateClosureInput struct {
	VehicleID   uuid.UUID
	StartDate   time.Time
	EndDate     time.Time
	Reason      model.ClosureReason
	Description string
}

// Close takes the vehicle out of service for an inclusive date range. Ranges
// of active closures for one vehicle may not overlap.
func (s *VehicleService) Close(ctx context.Context, principal model.Principal, input CreateClosureInput) (*model.VehicleClosure, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}

	start := eligibility.DateOnly(input.StartDate)
	end := eligibility.DateOnly(input.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidInput
	}

	vehicle, err := s.Get(ctx, principal, input.VehicleID)
	if err != nil {
		return nil, err
	}

	overlap, err := s.closureRepo.FindOverlapping(ctx, vehicle.ID, start, end, nil)
	if err != nil {
		return nil, err
	}
	if overlap != nil {
		return nil, ErrConflict
	}

	closure := &model.VehicleClosure{
		VehicleID:   vehicle.ID,
		StartDate:   start,
		EndDate:     end,
		Reason:      input.Reason,
		Description: input.Description,
		Active:      true,
		ClosedBy:    principal.UserID,
	}
	if err := s.closureRepo.Create(ctx, closure); err != nil {
		return nil, err
	}
	if err := s.refreshClosureFlags(ctx, vehicle.ID); err != nil {
		return nil, err
	}
	return s.closureRepo.GetByID(ctx, closure.ID)
}

func (s *VehicleService) ListClosures(ctx context.Context, principal model.Principal, vehicleID *uuid.UUID, activeOnly bool) ([]model.VehicleClosure, error) {
	return s.closureRepo.List(ctx, vehicleID, activeOnly)
}

// Reopen deactivates a closure, making its range bookable again.
func (s *VehicleService) Reopen(ctx context.Context, principal model.Principal, closureID uuid.UUID) error {
	if !principal.IsManager() {
		return ErrPermissionDenied
	}
	closure, err := s.closureRepo.GetByID(ctx, closureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !closure.Active {
		return ErrInvalidStatus
	}
	if err := s.closureRepo.SetActive(ctx, closure.ID, false); err != nil {
		return err
	}
	return s.refreshClosureFlags(ctx, closure.VehicleID)
}

// Reactivate puts a cancelled closure back in force, re-checking overlap
// against closures created since.
func (s *VehicleService) Reactivate(ctx context.Context, principal model.Principal, closureID uuid.UUID) error {
	if !principal.IsManager() {
		return ErrPermissionDenied
	}
	closure, err := s.closureRepo.GetByID(ctx, closureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if closure.Active {
		return ErrInvalidStatus
	}

	overlap, err := s.closureRepo.FindOverlapping(ctx, closure.VehicleID, closure.StartDate, closure.EndDate, &closure.ID)
	if err != nil {
		return err
	}
	if overlap != nil {
		return ErrConflict
	}

	if err := s.closureRepo.SetActive(ctx, closure.ID, true); err != nil {
		return err
	}
	return s.refreshClosureFlags(ctx, closure.VehicleID)
}

// refreshClosureFlags mirrors the closure table onto the vehicle's
// denormalized temporary_closed columns for today's date. The columns are
// display-only: availability checks always read the closure table, since the
// flag is not rewritten when a range lapses.
func (s *VehicleService) refreshClosureFlags(ctx context.Context, vehicleID uuid.UUID) error {
	today := eligibility.DateOnly(s.clock.Now())
	closures, err := s.closureRepo.List(ctx, &vehicleID, true)
	if err != nil {
		return err
	}
	fields := map[string]interface{}{
		"temporary_closed": false,
		"closure_reason":   "",
		"closure_start":    nil,
		"closure_end":      nil,
	}
	for i := range closures {
		if closures[i].Contains(today) {
			fields["temporary_closed"] = true
			fields["closure_reason"] = closures[i].Reason.Label()
			fields["closure_start"] = closures[i].StartDate
			fields["closure_end"] = closures[i].EndDate
			break
		}
	}
	return s.vehicleRepo.Update(ctx, vehicleID, fields)
}

// Suggest ranks active vehicles able to serve the district on the date by
// remaining capacity, closed and full vehicles excluded.
func (s *VehicleService) Suggest(ctx context.Context, principal model.Principal, districtID uuid.UUID, date time.Time) ([]model.VehicleSuggestion, error) {
	district, err := s.districtRepo.GetByID(ctx, districtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	vehicles, err := s.vehicleRepo.List(ctx, repository.VehicleFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	day := eligibility.DateOnly(date)
	ids := make([]uuid.UUID, 0, len(vehicles))
	for i := range vehicles {
		ids = append(ids, vehicles[i].ID)
	}
	booked, err := s.vehicleRepo.BookedCounts(ctx, ids, day)
	if err != nil {
		return nil, err
	}

	suggestions := make([]model.VehicleSuggestion, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		if !v.ServesDistrict(*district) {
			continue
		}
		closure, err := s.closureRepo.FindOverlapping(ctx, v.ID, day, day, nil)
		if err != nil {
			return nil, err
		}
		if closure != nil {
			continue
		}
		remaining := v.DailyLimit - booked[v.ID]
		if remaining <= 0 {
			continue
		}
		suggestions = append(suggestions, model.VehicleSuggestion{
			Vehicle:           model.VehicleBrief{ID: v.ID, Name: v.Name, Category: v.Category},
			DailyLimit:        v.DailyLimit,
			BookedCount:       booked[v.ID],
			RemainingCapacity: remaining,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].RemainingCapacity > suggestions[j].RemainingCapacity
	})
	return suggestions, nil
}
