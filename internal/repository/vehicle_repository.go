package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

type VehicleFilter struct {
	Categories []model.VehicleCategory
	ActiveOnly bool
	DistrictID *uuid.UUID
}

func (r *VehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&model.Vehicle{})
	if len(filter.Categories) > 0 {
		query = query.Where("vehicles.category IN ?", filter.Categories)
	}
	// Closedness is decided against vehicle_closures per date, not the
	// denormalized temporary_closed flag, which goes stale once a range
	// lapses.
	if filter.ActiveOnly {
		query = query.Where("vehicles.active = TRUE")
	}
	if filter.DistrictID != nil {
		query = query.
			Joins("JOIN vehicle_districts vd ON vd.vehicle_id = vehicles.id").
			Where("vd.district_id = ?", *filter.DistrictID)
	}
	var vehicles []model.Vehicle
	err := query.Order("vehicles.name ASC").Preload("Districts").Find(&vehicles).Error
	return vehicles, err
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).
		Preload("Districts").
		First(&vehicle, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ReplaceDistricts resets the vehicle's eligible-district set.
func (r *VehicleRepository) ReplaceDistricts(ctx context.Context, vehicle *model.Vehicle, districts []model.District) error {
	return r.db.WithContext(ctx).Model(vehicle).Association("Districts").Replace(districts)
}

// BookedCounts returns non-cancelled document counts per vehicle for a date,
// used by the suggestion ranking.
func (r *VehicleRepository) BookedCounts(ctx context.Context, vehicleIDs []uuid.UUID, date time.Time) (map[uuid.UUID]int, error) {
	if len(vehicleIDs) == 0 {
		return map[uuid.UUID]int{}, nil
	}
	type row struct {
		VehicleID uuid.UUID
		Total     int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.DeliveryDocument{}).
		Select("vehicle_id, COUNT(*) AS total").
		Where("vehicle_id IN ? AND delivery_date = ? AND status <> ?", vehicleIDs, date, model.DeliveryStatusCancelled).
		Group("vehicle_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		counts[r.VehicleID] = r.Total
	}
	return counts, nil
}
