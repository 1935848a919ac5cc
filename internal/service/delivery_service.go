package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/model"
	"delivery-service/internal/notification"
	"delivery-service/internal/repository"
)

const deliverySequenceCode = "delivery"

type DeliveryService struct {
	deliveryRepo   DeliveryStore
	vehicleRepo    VehicleStore
	districtRepo   DistrictStore
	approvalRepo   ApprovalStore
	engine         *eligibility.Engine
	notifier       notification.Notifier
	clock          eligibility.Clock
	userDailyLimit int
}

func NewDeliveryService(
	deliveryRepo DeliveryStore,
	vehicleRepo VehicleStore,
	districtRepo DistrictStore,
	approvalRepo ApprovalStore,
	engine *eligibility.Engine,
	notifier notification.Notifier,
	clock eligibility.Clock,
	userDailyLimit int,
) *DeliveryService {
	return &DeliveryService{
		deliveryRepo:   deliveryRepo,
		vehicleRepo:    vehicleRepo,
		districtRepo:   districtRepo,
		approvalRepo:   approvalRepo,
		engine:         engine,
		notifier:       notifier,
		clock:          clock,
		userDailyLimit: userDailyLimit,
	}
}

type ListDeliveriesOptions struct {
	Statuses   []model.DeliveryStatus
	VehicleID  *uuid.UUID
	DistrictID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int
	Offset     int
}

func (s *DeliveryService) List(ctx context.Context, principal model.Principal, opts ListDeliveriesOptions) ([]model.DeliveryRecord, error) {
	filter := repository.DeliveryFilter{
		Statuses:   opts.Statuses,
		VehicleID:  opts.VehicleID,
		DistrictID: opts.DistrictID,
		DateFrom:   opts.DateFrom,
		DateTo:     opts.DateTo,
		Search:     opts.Search,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}

	docs, err := s.deliveryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	records := make([]model.DeliveryRecord, 0, len(docs))
	for i := range docs {
		record, err := s.buildRecord(ctx, &docs[i])
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (s *DeliveryService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.DeliveryRecord, error) {
	doc, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.buildRecord(ctx, doc)
}

type DeliveryLineInput struct {
	Product  string
	Quantity float64
	Unit     string
}

type CreateDeliveryInput struct {
	DeliveryDate    time.Time
	VehicleID       uuid.UUID
	DistrictID      uuid.UUID
	CustomerName    string
	CustomerPhone   string
	ManualPhone     string
	CustomerAddress string
	DriverName      string
	TransferRef     string
	Priority        int
	Notes           string
	Lines           []DeliveryLineInput
	// RequestApproval routes a capacity overflow into the approval workflow
	// instead of failing. Managers only.
	RequestApproval bool
}

// Create validates the scheduling rules and persists the document in READY
// state. A capacity overflow with RequestApproval set (manager only) stores
// the document as DRAFT behind a pending capacity-approval request.
func (s *DeliveryService) Create(ctx context.Context, principal model.Principal, input CreateDeliveryInput) (*model.DeliveryRecord, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, ErrInvalidInput
	}

	vehicle, district, err := s.resolveVehicleDistrict(ctx, input.VehicleID, input.DistrictID)
	if err != nil {
		return nil, err
	}

	if !principal.IsManager() {
		created, err := s.deliveryRepo.CountCreatedOnDate(ctx, principal.UserID, eligibility.DateOnly(input.DeliveryDate))
		if err != nil {
			return nil, err
		}
		if created >= int64(s.userDailyLimit) {
			return nil, ErrDailyLimitReached
		}
	}

	actor := eligibility.Actor{IsManager: principal.IsManager()}
	validationErr := s.engine.ValidateDelivery(ctx, eligibility.DeliveryInput{
		Date:     input.DeliveryDate,
		Vehicle:  vehicle,
		District: district,
	}, actor)

	pendingApproval := false
	if validationErr != nil {
		var ruleErr *eligibility.RuleError
		if errors.As(validationErr, &ruleErr) &&
			(ruleErr.Code == eligibility.RuleVehicleCapacity || ruleErr.Code == eligibility.RuleDistrictDayCapacity) &&
			input.RequestApproval {
			if !principal.IsManager() {
				return nil, ErrPermissionDenied
			}
			pendingApproval = true
		} else {
			return nil, validationErr
		}
	}

	doc, err := s.buildDocument(ctx, principal, input, pendingApproval)
	if err != nil {
		return nil, err
	}

	if err := s.deliveryRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := s.deliveryRepo.LogStatusChange(ctx, &model.DeliveryStatusLog{
		DeliveryID: doc.ID,
		NewStatus:  doc.Status,
		Note:       "teslimat oluşturuldu",
		ChangedBy:  &principal.UserID,
	}); err != nil {
		return nil, err
	}

	if pendingApproval {
		if err := s.openApprovalRequest(ctx, principal, doc, vehicle); err != nil {
			return nil, err
		}
	} else {
		s.notify(ctx, doc, doc.Status)
	}

	created, err := s.deliveryRepo.GetByID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return s.buildRecord(ctx, created)
}

func (s *DeliveryService) buildDocument(ctx context.Context, principal model.Principal, input CreateDeliveryInput, pendingApproval bool) (*model.DeliveryDocument, error) {
	seq, err := s.deliveryRepo.NextNumber(ctx, deliverySequenceCode)
	if err != nil {
		return nil, err
	}

	date := eligibility.DateOnly(input.DeliveryDate)
	stop, err := s.deliveryRepo.NextStopNumber(ctx, input.VehicleID, date)
	if err != nil {
		return nil, err
	}

	status := model.DeliveryStatusReady
	if pendingApproval {
		status = model.DeliveryStatusDraft
	}

	doc := &model.DeliveryDocument{
		Number:          fmt.Sprintf("TSL-%05d", seq),
		DeliveryDate:    date,
		VehicleID:       input.VehicleID,
		DistrictID:      input.DistrictID,
		Status:          status,
		CustomerName:    strings.TrimSpace(input.CustomerName),
		CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
		ManualPhone:     strings.TrimSpace(input.ManualPhone),
		CustomerAddress: input.CustomerAddress,
		DriverName:      input.DriverName,
		TransferRef:     input.TransferRef,
		StopNumber:      stop,
		Priority:        input.Priority,
		Notes:           input.Notes,
		CreatedBy:       principal.UserID,
	}
	for i, line := range input.Lines {
		if strings.TrimSpace(line.Product) == "" {
			return nil, ErrInvalidInput
		}
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		doc.Lines = append(doc.Lines, model.DeliveryLine{
			Sequence: i + 1,
			Product:  line.Product,
			Quantity: qty,
			Unit:     line.Unit,
		})
	}
	return doc, nil
}

func (s *DeliveryService) openApprovalRequest(ctx context.Context, principal model.Principal, doc *model.DeliveryDocument, vehicle *model.Vehicle) error {
	existing, err := s.approvalRepo.PendingForDelivery(ctx, doc.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrConflict
	}

	seq, err := s.deliveryRepo.NextNumber(ctx, approvalSequenceCode)
	if err != nil {
		return err
	}

	booked, err := s.vehicleRepo.BookedCounts(ctx, []uuid.UUID{vehicle.ID}, doc.DeliveryDate)
	if err != nil {
		return err
	}

	approval := &model.CapacityApprovalRequest{
		Number:        fmt.Sprintf("KPO-%05d", seq),
		DeliveryID:    doc.ID,
		Status:        model.ApprovalStatusPending,
		ExistingCount: booked[vehicle.ID],
		DailyLimit:    vehicle.DailyLimit,
		CreatedBy:     principal.UserID,
	}
	if err := s.approvalRepo.Create(ctx, approval); err != nil {
		return err
	}
	return s.approvalRepo.LogStatusChange(ctx, &model.ApprovalStatusLog{
		ApprovalID: approval.ID,
		NewStatus:  model.ApprovalStatusPending,
		Note:       "kapasite aşımı onay talebi",
		ChangedBy:  &principal.UserID,
	})
}

type UpdateDeliveryInput struct {
	DeliveryDate *time.Time
	VehicleID    *uuid.UUID
	DistrictID   *uuid.UUID
	DriverName   *string
	Notes        *string
	Priority     *int
}

// Update edits schedule-relevant fields on a non-terminal document. When the
// date, vehicle or district changes, the full rule set is revalidated with
// the document itself excluded from the counts.
func (s *DeliveryService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateDeliveryInput) (*model.DeliveryRecord, error) {
	doc, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, ErrInvalidStatus
	}

	date := doc.DeliveryDate
	vehicleID := doc.VehicleID
	districtID := doc.DistrictID
	scheduleChanged := false
	if input.DeliveryDate != nil {
		date = eligibility.DateOnly(*input.DeliveryDate)
		scheduleChanged = true
	}
	if input.VehicleID != nil {
		vehicleID = *input.VehicleID
		scheduleChanged = true
	}
	if input.DistrictID != nil {
		districtID = *input.DistrictID
		scheduleChanged = true
	}

	fields := map[string]interface{}{}
	if scheduleChanged {
		vehicle, district, err := s.resolveVehicleDistrict(ctx, vehicleID, districtID)
		if err != nil {
			return nil, err
		}
		err = s.engine.ValidateDelivery(ctx, eligibility.DeliveryInput{
			ID:       &doc.ID,
			Date:     date,
			Vehicle:  vehicle,
			District: district,
		}, eligibility.Actor{IsManager: principal.IsManager()})
		if err != nil {
			return nil, err
		}
		fields["delivery_date"] = date
		fields["vehicle_id"] = vehicleID
		fields["district_id"] = districtID
	}
	if input.DriverName != nil {
		fields["driver_name"] = *input.DriverName
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	if input.Priority != nil {
		fields["priority"] = *input.Priority
	}
	if len(fields) == 0 {
		return s.buildRecord(ctx, doc)
	}

	if err := s.deliveryRepo.Update(ctx, doc.ID, fields); err != nil {
		return nil, err
	}

	updated, err := s.deliveryRepo.GetByID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	return s.buildRecord(ctx, updated)
}

// Dispatch moves a READY document to IN_TRANSIT.
func (s *DeliveryService) Dispatch(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	return s.transition(ctx, principal, id, model.DeliveryStatusInTransit, "sürücü yola çıktı", nil)
}

type CompleteDeliveryInput struct {
	ReceivedBy string
	Note       string
}

// Complete moves an IN_TRANSIT document to DELIVERED, recording who received
// it.
func (s *DeliveryService) Complete(ctx context.Context, principal model.Principal, id uuid.UUID, input CompleteDeliveryInput) error {
	now := s.clock.Now()
	extra := map[string]interface{}{
		"received_by":  input.ReceivedBy,
		"delivered_at": &now,
	}
	if strings.TrimSpace(input.Note) != "" {
		extra["notes"] = gorm.Expr(
			"COALESCE(notes, '') || ?",
			fmt.Sprintf("\n\n[%s] Teslim notu: %s", now.Format("02.01.2006 15:04"), input.Note))
	}
	return s.transition(ctx, principal, id, model.DeliveryStatusDelivered, "teslimat tamamlandı", extra)
}

// Cancel is reachable from every non-terminal state, for managers or the
// document's creator.
func (s *DeliveryService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID, reason string) error {
	doc, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !principal.IsManager() && doc.CreatedBy != principal.UserID {
		return ErrPermissionDenied
	}
	if doc.Status.IsTerminal() {
		return ErrInvalidStatus
	}

	if err := s.deliveryRepo.UpdateStatus(ctx, doc.ID, model.DeliveryStatusCancelled); err != nil {
		return err
	}
	note := "teslimat iptal edildi"
	if strings.TrimSpace(reason) != "" {
		note = note + ": " + reason
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

func (s *DeliveryService) transition(ctx context.Context, principal model.Principal, id uuid.UUID, target model.DeliveryStatus, note string, extra map[string]interface{}) error {
	doc, err := s.deliveryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !doc.Status.CanTransitionTo(target) {
		return ErrInvalidStatus
	}

	fields := map[string]interface{}{"status": target}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.deliveryRepo.Update(ctx, doc.ID, fields); err != nil {
		return err
	}

	prev := doc.Status
	if err := s.deliveryRepo.LogStatusChange(ctx, &model.DeliveryStatusLog{
		DeliveryID: doc.ID,
		OldStatus:  &prev,
		NewStatus:  target,
		Note:       note,
		ChangedBy:  &principal.UserID,
	}); err != nil {
		return err
	}

	doc.Status = target
	s.notify(ctx, doc, target)
	return nil
}

func (s *DeliveryService) notify(ctx context.Context, doc *model.DeliveryDocument, status model.DeliveryStatus) {
	if s.notifier != nil {
		s.notifier.OnStateTransition(ctx, doc, status)
	}
}

func (s *DeliveryService) resolveVehicleDistrict(ctx context.Context, vehicleID, districtID uuid.UUID) (*model.Vehicle, *model.District, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	district, err := s.districtRepo.GetByID(ctx, districtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	if !district.Active || !district.DeliveryEnabled {
		return nil, nil, ErrInvalidInput
	}
	if !vehicle.Active {
		return nil, nil, ErrInvalidInput
	}
	return vehicle, district, nil
}

func (s *DeliveryService) buildRecord(ctx context.Context, doc *model.DeliveryDocument) (*model.DeliveryRecord, error) {
	record := &model.DeliveryRecord{Delivery: *doc}
	if doc.Vehicle != nil {
		record.Vehicle = &model.VehicleBrief{
			ID:       doc.Vehicle.ID,
			Name:     doc.Vehicle.Name,
			Category: doc.Vehicle.Category,
		}
	}
	if doc.District != nil {
		record.District = &model.DistrictBrief{
			ID:   doc.District.ID,
			Name: doc.District.Name,
			Side: doc.District.Side,
		}
	}
	pending, err := s.approvalRepo.PendingForDelivery(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		record.PendingApproval = &model.ApprovalBrief{
			ID:        pending.ID,
			Number:    pending.Number,
			Status:    pending.Status,
			CreatedAt: pending.CreatedAt,
		}
	}
	return record, nil
}
