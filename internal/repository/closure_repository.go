package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/model"
)

type ClosureRepository struct {
	db *gorm.DB
}

func NewClosureRepository(db *gorm.DB) *ClosureRepository {
	return &ClosureRepository{db: db}
}

func (r *ClosureRepository) List(ctx context.Context, vehicleID *uuid.UUID, activeOnly bool) ([]model.VehicleClosure, error) {
	query := r.db.WithContext(ctx).Model(&model.VehicleClosure{})
	if vehicleID != nil {
		query = query.Where("vehicle_id = ?", *vehicleID)
	}
	if activeOnly {
		query = query.Where("active = TRUE")
	}
	var closures []model.VehicleClosure
	err := query.Order("start_date DESC").Preload("Vehicle").Find(&closures).Error
	return closures, err
}

func (r *ClosureRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.VehicleClosure, error) {
	var closure model.VehicleClosure
	err := r.db.WithContext(ctx).Preload("Vehicle").First(&closure, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &closure, nil
}

func (r *ClosureRepository) Create(ctx context.Context, closure *model.VehicleClosure) error {
	return r.db.WithContext(ctx).Create(closure).Error
}

func (r *ClosureRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.VehicleClosure{}).
		Where("id = ?", id).
		Update("active", active).Error
}

// FindOverlapping returns an active closure of the vehicle sharing at least
// one day with [start, end], excluding the given id, or nil.
func (r *ClosureRepository) FindOverlapping(ctx context.Context, vehicleID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*model.VehicleClosure, error) {
	query := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND active = TRUE", vehicleID).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var closure model.VehicleClosure
	err := query.First(&closure).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &closure, nil
}
