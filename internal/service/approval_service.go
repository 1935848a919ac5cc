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
	"delivery-service/internal/notification"
	"delivery-service/internal/repository"
)

const approvalSequenceCode = "approval"

type ApprovalService struct {
	approvalRepo ApprovalStore
	deliveryRepo DeliveryStateStore
	notifier     notification.Notifier
	clock        eligibility.Clock
}

func NewApprovalService(
	approvalRepo ApprovalStore,
	deliveryRepo DeliveryStateStore,
	notifier notification.Notifier,
	clock eligibility.Clock,
) *ApprovalService {
	return &ApprovalService{
		approvalRepo: approvalRepo,
		deliveryRepo: deliveryRepo,
		notifier:     notifier,
		clock:        clock,
	}
}

type ListApprovalsOptions struct {
	Statuses  []model.ApprovalStatus
	VehicleID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

func (s *ApprovalService) List(ctx context.Context, principal model.Principal, opts ListApprovalsOptions) ([]model.ApprovalRecord, error) {
	approvals, err := s.approvalRepo.List(ctx, repository.ApprovalFilter{
		Statuses:  opts.Statuses,
		VehicleID: opts.VehicleID,
		DateFrom:  opts.DateFrom,
		DateTo:    opts.DateTo,
		Limit:     opts.Limit,
		Offset:    opts.Offset,
	})
	if err != nil {
		return nil, err
	}

	records := make([]model.ApprovalRecord, 0, len(approvals))
	for i := range approvals {
		records = append(records, buildApprovalRecord(&approvals[i]))
	}
	return records, nil
}

func (s *ApprovalService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ApprovalRecord, error) {
	approval, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	record := buildApprovalRecord(approval)
	return &record, nil
}

func (s *ApprovalService) Stats(ctx context.Context, principal model.Principal) (*model.ApprovalStats, error) {
	if !principal.IsManager() {
		return nil, ErrPermissionDenied
	}
	return s.approvalRepo.Stats(ctx)
}

// Approve resolves a pending request and releases the linked document to
// READY. Manager only.
func (s *ApprovalService) Approve(ctx context.Context, principal model.Principal, id uuid.UUID, note string) error {
	if !principal.IsManager() {
		return ErrPermissionDenied
	}

	approval, err := s.pending(ctx, id)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if err := s.approvalRepo.Update(ctx, approval.ID, map[string]interface{}{
		"status":        model.ApprovalStatusApproved,
		"approved_by":   principal.UserID,
		"approved_at":   &now,
		"approval_note": note,
	}); err != nil {
		return err
	}
	if err := s.logTransition(ctx, principal, approval, model.ApprovalStatusApproved, "kapasite aşımı onaylandı"); err != nil {
		return err
	}

	doc, err := s.deliveryRepo.GetByID(ctx, approval.DeliveryID)
	if err != nil {
		return err
	}
	if doc.Status == model.DeliveryStatusDraft {
		if err := s.deliveryRepo.UpdateStatus(ctx, doc.ID, model.DeliveryStatusReady); err != nil {
			return err
		}
		prev := doc.Status
		if err := s.deliveryRepo.LogStatusChange(ctx, &model.DeliveryStatusLog{
			DeliveryID: doc.ID,
			OldStatus:  &prev,
			NewStatus:  model.DeliveryStatusReady,
			Note:       "kapasite onayı ile planlandı",
			ChangedBy:  &principal.UserID,
		}); err != nil {
			return err
		}
		doc.Status = model.DeliveryStatusReady
		if s.notifier != nil {
			s.notifier.OnStateTransition(ctx, doc, model.DeliveryStatusReady)
		}
	}
	return nil
}

// Reject resolves a pending request with a mandatory note and cancels the
// linked document. Manager only.
func (s *ApprovalService) Reject(ctx context.Context, principal model.Principal, id uuid.UUID, note string) error {
	if !principal.IsManager() {
		return ErrPermissionDenied
	}
	if strings.TrimSpace(note) == "" {
		return ErrInvalidInput
	}

	approval, err := s.pending(ctx, id)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	if err := s.approvalRepo.Update(ctx, approval.ID, map[string]interface{}{
		"status":         model.ApprovalStatusRejected,
		"rejected_by":    principal.UserID,
		"rejected_at":    &now,
		"rejection_note": note,
	}); err != nil {
		return err
	}
	if err := s.logTransition(ctx, principal, approval, model.ApprovalStatusRejected, "kapasite aşımı reddedildi: "+note); err != nil {
		return err
	}
	return s.cancelDelivery(ctx, principal, approval.DeliveryID, "kapasite onayı reddedildi")
}

// Cancel withdraws a pending request. The requester or a manager may cancel;
// the linked draft document is cancelled with it.
func (s *ApprovalService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	approval, err := s.pending(ctx, id)
	if err != nil {
		return err
	}
	if !principal.IsManager() && approval.CreatedBy != principal.UserID {
		return ErrPermissionDenied
	}

	if err := s.approvalRepo.Update(ctx, approval.ID, map[string]interface{}{
		"status": model.ApprovalStatusCancelled,
	}); err != nil {
		return err
	}
	if err := s.logTransition(ctx, principal, approval, model.ApprovalStatusCancelled, "onay talebi geri çekildi"); err != nil {
		return err
	}
	return s.cancelDelivery(ctx, principal, approval.DeliveryID, "onay talebi geri çekildi")
}

func (s *ApprovalService) pending(ctx context.Context, id uuid.UUID) (*model.CapacityApprovalRequest, error) {
	approval, err := s.approvalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if approval.Status != model.ApprovalStatusPending {
		return nil, ErrInvalidStatus
	}
	return approval, nil
}

func (s *ApprovalService) logTransition(ctx context.Context, principal model.Principal, approval *model.CapacityApprovalRequest, target model.ApprovalStatus, note string) error {
	prev := approval.Status
	return s.approvalRepo.LogStatusChange(ctx, &model.ApprovalStatusLog{
		ApprovalID: approval.ID,
		OldStatus:  &prev,
		NewStatus:  target,
		Note:       note,
		ChangedBy:  &principal.UserID,
	})
}

func (s *ApprovalService) cancelDelivery(ctx context.Context, principal model.Principal, deliveryID uuid.UUID, note string) error {
	doc, err := s.deliveryRepo.GetByID(ctx, deliveryID)
	if err != nil {
		return err
	}
	if doc.Status.IsTerminal() {
		return nil
	}
	if err := s.deliveryRepo.UpdateStatus(ctx, doc.ID, model.DeliveryStatusCancelled); err != nil {
		return err
	}
	prev := doc.Status
	return s.deliveryRepo.LogStatusChange(ctx, &model.DeliveryStatusLog{
		DeliveryID: doc.ID,
		OldStatus:  &prev,
		NewStatus:  model.DeliveryStatusCancelled,
		Note:       note,
		ChangedBy:  &principal.UserID,
	})
}

func buildApprovalRecord(approval *model.CapacityApprovalRequest) model.ApprovalRecord {
	record := model.ApprovalRecord{Approval: *approval}
	if approval.Delivery != nil {
		record.Delivery = approval.Delivery
		if approval.Delivery.Vehicle != nil {
			record.Vehicle = &model.VehicleBrief{
				ID:       approval.Delivery.Vehicle.ID,
				Name:     approval.Delivery.Vehicle.Name,
				Category: approval.Delivery.Vehicle.Category,
			}
		}
		if approval.Delivery.District != nil {
			record.District = &model.DistrictBrief{
				ID:   approval.Delivery.District.ID,
				Name: approval.Delivery.District.Name,
				Side: approval.Delivery.District.Side,
			}
		}
	}
	return record
}
