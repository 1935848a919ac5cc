package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/model"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

type DeliveryFilter struct {
	Statuses   []model.DeliveryStatus
	VehicleID  *uuid.UUID
	DistrictID *uuid.UUID
	CreatedBy  *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int
	Offset     int
}

func (r *DeliveryRepository) List(ctx context.Context, filter DeliveryFilter) ([]model.DeliveryDocument, error) {
	query := r.db.WithContext(ctx).Model(&model.DeliveryDocument{})

	if len(filter.Statuses) > 0 {
		query = query.Where("delivery_documents.status IN ?", filter.Statuses)
	}
	if filter.VehicleID != nil {
		query = query.Where("delivery_documents.vehicle_id = ?", *filter.VehicleID)
	}
	if filter.DistrictID != nil {
		query = query.Where("delivery_documents.district_id = ?", *filter.DistrictID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("delivery_documents.created_by = ?", *filter.CreatedBy)
	}
	if filter.DateFrom != nil {
		query = query.Where("delivery_documents.delivery_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("delivery_documents.delivery_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where(
			"(delivery_documents.customer_name ILIKE ? OR delivery_documents.number ILIKE ? OR delivery_documents.transfer_ref ILIKE ?)",
			search, search, search)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var docs []model.DeliveryDocument
	if err := query.
		Order("delivery_documents.delivery_date ASC, delivery_documents.stop_number ASC").
		Preload("Vehicle").
		Preload("District").
		Preload("Lines").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DeliveryDocument, error) {
	var doc model.DeliveryDocument
	err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Vehicle.Districts").
		Preload("District").
		Preload("Lines").
		First(&doc, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create persists the document with its lines atomically.
func (r *DeliveryRepository) Create(ctx context.Context, doc *model.DeliveryDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(doc).Error
	})
}

func (r *DeliveryRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.DeliveryDocument{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.DeliveryDocument{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *DeliveryRepository) LogStatusChange(ctx context.Context, entry *model.DeliveryStatusLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *DeliveryRepository) MarkSmsSent(ctx context.Context, id uuid.UUID, column string) error {
	return r.db.WithContext(ctx).
		Model(&model.DeliveryDocument{}).
		Where("id = ?", id).
		Update(column, true).Error
}

// NextStopNumber returns the next stop position for a vehicle's route on a
// date.
func (r *DeliveryRepository) NextStopNumber(ctx context.Context, vehicleID uuid.UUID, date time.Time) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.DeliveryDocument{}).
		Where("vehicle_id = ? AND delivery_date = ?", vehicleID, date).
		Select("COALESCE(MAX(stop_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// CountCreatedOnDate counts documents a user created for a delivery date,
// for the per-user daily creation limit.
func (r *DeliveryRepository) CountCreatedOnDate(ctx context.Context, userID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DeliveryDocument{}).
		Where("created_by = ? AND delivery_date = ?", userID, date).
		Count(&count).Error
	return count, err
}

// NextNumber draws the next value of a named sequence.
func (r *DeliveryRepository) NextNumber(ctx context.Context, code string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).
		Raw("UPDATE number_sequences SET value = value + 1 WHERE code = ? RETURNING value", code).
		Scan(&value).Error
	return value, err
}
