package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/model"
)

// ScheduleRepository owns weekdays and day-district capacity assignments,
// and is the persistence behind the eligibility engine's Store.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) ListWeekDays(ctx context.Context) ([]model.WeekDay, error) {
	var days []model.WeekDay
	err := r.db.WithContext(ctx).
		Order("sequence ASC").
		Preload("Assignments").
		Preload("Assignments.District").
		Find(&days).Error
	return days, err
}

func (r *ScheduleRepository) GetWeekDay(ctx context.Context, id uuid.UUID) (*model.WeekDay, error) {
	var day model.WeekDay
	if err := r.db.WithContext(ctx).First(&day, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *ScheduleRepository) WeekDayByCode(ctx context.Context, code model.WeekDayCode) (*model.WeekDay, error) {
	var day model.WeekDay
	err := r.db.WithContext(ctx).First(&day, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *ScheduleRepository) UpdateWeekDay(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.WeekDay{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// GeneralAssignment fetches the NULL-dated weekly rule for the pair.
func (r *ScheduleRepository) GeneralAssignment(ctx context.Context, weekDayID, districtID uuid.UUID) (*model.DayDistrictAssignment, error) {
	var assignment model.DayDistrictAssignment
	err := r.db.WithContext(ctx).
		Where("week_day_id = ? AND district_id = ? AND effective_date IS NULL", weekDayID, districtID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// DatedAssignment fetches a date-specific override, or nil.
func (r *ScheduleRepository) DatedAssignment(ctx context.Context, weekDayID, districtID uuid.UUID, date time.Time) (*model.DayDistrictAssignment, error) {
	var assignment model.DayDistrictAssignment
	err := r.db.WithContext(ctx).
		Where("week_day_id = ? AND district_id = ? AND effective_date = ?", weekDayID, districtID, date).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *ScheduleRepository) ListAssignments(ctx context.Context, weekDayID, districtID *uuid.UUID) ([]model.DayDistrictAssignment, error) {
	query := r.db.WithContext(ctx).Model(&model.DayDistrictAssignment{})
	if weekDayID != nil {
		query = query.Where("week_day_id = ?", *weekDayID)
	}
	if districtID != nil {
		query = query.Where("district_id = ?", *districtID)
	}
	var assignments []model.DayDistrictAssignment
	err := query.
		Preload("WeekDay").
		Preload("District").
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *ScheduleRepository) CreateAssignment(ctx context.Context, assignment *model.DayDistrictAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *ScheduleRepository) UpdateAssignment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.DayDistrictAssignment{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *ScheduleRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DayDistrictAssignment{}, "id = ?", id).Error
}

// RuleStore aggregates the repositories into the eligibility engine's read
// interface.
type RuleStore struct {
	schedule *ScheduleRepository
	db       *gorm.DB
}

func NewRuleStore(db *gorm.DB, schedule *ScheduleRepository) *RuleStore {
	return &RuleStore{schedule: schedule, db: db}
}

func (s *RuleStore) WeekDayByCode(ctx context.Context, code model.WeekDayCode) (*model.WeekDay, error) {
	return s.schedule.WeekDayByCode(ctx, code)
}

func (s *RuleStore) GeneralAssignment(ctx context.Context, weekDayID, districtID uuid.UUID) (*model.DayDistrictAssignment, error) {
	return s.schedule.GeneralAssignment(ctx, weekDayID, districtID)
}

func (s *RuleStore) CountDeliveries(ctx context.Context, f eligibility.CountFilter) (int, error) {
	query := s.db.WithContext(ctx).
		Model(&model.DeliveryDocument{}).
		Where("delivery_date = ?", f.Date).
		Where("status <> ?", model.DeliveryStatusCancelled)
	if f.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *f.VehicleID)
	}
	if f.DistrictID != nil {
		query = query.Where("district_id = ?", *f.DistrictID)
	}
	if f.ExcludeID != nil {
		query = query.Where("id <> ?", *f.ExcludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *RuleStore) ActiveClosure(ctx context.Context, vehicleID uuid.UUID, date time.Time) (*model.VehicleClosure, error) {
	var closure model.VehicleClosure
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ? AND active = TRUE AND start_date <= ? AND end_date >= ?", vehicleID, date, date).
		First(&closure).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &closure, nil
}
