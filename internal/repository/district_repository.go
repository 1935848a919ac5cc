package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/model"
)

type DistrictRepository struct {
	db *gorm.DB
}

func NewDistrictRepository(db *gorm.DB) *DistrictRepository {
	return &DistrictRepository{db: db}
}

type DistrictFilter struct {
	Side       *model.DistrictSide
	ActiveOnly bool
	DeliveryOn bool
	Search     string
}

func (r *DistrictRepository) List(ctx context.Context, filter DistrictFilter) ([]model.District, error) {
	query := r.db.WithContext(ctx).Model(&model.District{})
	if filter.Side != nil {
		query = query.Where("side = ?", *filter.Side)
	}
	if filter.ActiveOnly {
		query = query.Where("active = TRUE")
	}
	if filter.DeliveryOn {
		query = query.Where("delivery_enabled = TRUE")
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	var districts []model.District
	err := query.Order("name ASC").Find(&districts).Error
	return districts, err
}

func (r *DistrictRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.District, error) {
	var district model.District
	if err := r.db.WithContext(ctx).First(&district, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &district, nil
}

func (r *DistrictRepository) GetByName(ctx context.Context, name string) (*model.District, error) {
	var district model.District
	err := r.db.WithContext(ctx).First(&district, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &district, nil
}

func (r *DistrictRepository) Create(ctx context.Context, district *model.District) error {
	return r.db.WithContext(ctx).Create(district).Error
}

func (r *DistrictRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.District{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SeedIstanbul inserts the fixed Istanbul district list, skipping names that
// already exist.
func (r *DistrictRepository) SeedIstanbul(ctx context.Context) (int, error) {
	created := 0
	for _, name := range model.IstanbulDistrictNames() {
		existing, err := r.GetByName(ctx, name)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		district := &model.District{
			Name:            name,
			Side:            model.SideForDistrictName(name),
			Active:          true,
			DeliveryEnabled: true,
			DeliveryDays:    1,
		}
		if err := r.Create(ctx, district); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
