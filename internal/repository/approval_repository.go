package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/model"
)

type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

type ApprovalFilter struct {
	Statuses   []model.ApprovalStatus
	DeliveryID *uuid.UUID
	VehicleID  *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

func (r *ApprovalRepository) List(ctx context.Context, filter ApprovalFilter) ([]model.CapacityApprovalRequest, error) {
	query := r.db.WithContext(ctx).
		Model(&model.CapacityApprovalRequest{}).
		Joins("JOIN delivery_documents d ON d.id = capacity_approval_requests.delivery_id")

	if len(filter.Statuses) > 0 {
		query = query.Where("capacity_approval_requests.status IN ?", filter.Statuses)
	}
	if filter.DeliveryID != nil {
		query = query.Where("capacity_approval_requests.delivery_id = ?", *filter.DeliveryID)
	}
	if filter.VehicleID != nil {
		query = query.Where("d.vehicle_id = ?", *filter.VehicleID)
	}
	if filter.DateFrom != nil {
		query = query.Where("capacity_approval_requests.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("capacity_approval_requests.created_at <= ?", *filter.DateTo)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var approvals []model.CapacityApprovalRequest
	if err := query.
		Order("capacity_approval_requests.created_at ASC").
		Preload("Delivery").
		Preload("Delivery.Vehicle").
		Preload("Delivery.District").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

func (r *ApprovalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CapacityApprovalRequest, error) {
	var approval model.CapacityApprovalRequest
	err := r.db.WithContext(ctx).
		Preload("Delivery").
		Preload("Delivery.Vehicle").
		Preload("Delivery.District").
		First(&approval, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

// PendingForDelivery returns the delivery's open request, or nil. At most
// one pending request may exist per document.
func (r *ApprovalRepository) PendingForDelivery(ctx context.Context, deliveryID uuid.UUID) (*model.CapacityApprovalRequest, error) {
	var approval model.CapacityApprovalRequest
	err := r.db.WithContext(ctx).
		Where("delivery_id = ? AND status = ?", deliveryID, model.ApprovalStatusPending).
		First(&approval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *ApprovalRepository) Create(ctx context.Context, approval *model.CapacityApprovalRequest) error {
	return r.db.WithContext(ctx).Create(approval).Error
}

func (r *ApprovalRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.CapacityApprovalRequest{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *ApprovalRepository) LogStatusChange(ctx context.Context, entry *model.ApprovalStatusLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ApprovalRepository) Stats(ctx context.Context) (*model.ApprovalStats, error) {
	stats := &model.ApprovalStats{}
	targets := []struct {
		status model.ApprovalStatus
		dest   *int64
	}{
		{model.ApprovalStatusPending, &stats.Pending},
		{model.ApprovalStatusApproved, &stats.Approved},
		{model.ApprovalStatusRejected, &stats.Rejected},
		{model.ApprovalStatusCancelled, &stats.Cancelled},
	}
	for _, t := range targets {
		err := r.db.WithContext(ctx).
			Model(&model.CapacityApprovalRequest{}).
			Where("status = ?", t.status).
			Count(t.dest).Error
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}
