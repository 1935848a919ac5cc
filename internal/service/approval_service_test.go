package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/model"
	"delivery-service/internal/repository"
)

// Monday, well after the same-day cutoff.
var fixedNow = time.Date(2024, time.June, 10, 14, 30, 0, 0, time.UTC)

func fixedServiceClock() eligibility.Clock {
	return eligibility.ClockFunc(func() time.Time { return fixedNow })
}

func managerPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), FullName: "Yönetici", Role: model.UserRoleManager}
}

func plannerPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), FullName: "Planlayıcı", Role: model.UserRolePlanner}
}

type recordingNotifier struct {
	events []model.DeliveryStatus
}

func (n *recordingNotifier) OnStateTransition(_ context.Context, _ *model.DeliveryDocument, status model.DeliveryStatus) {
	n.events = append(n.events, status)
}

type fakeDeliveryStore struct {
	docs      map[uuid.UUID]*model.DeliveryDocument
	logs      []model.DeliveryStatusLog
	updates   map[uuid.UUID]map[string]interface{}
	created   int64
	sequences map[string]int64
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{
		docs:      map[uuid.UUID]*model.DeliveryDocument{},
		updates:   map[uuid.UUID]map[string]interface{}{},
		sequences: map[string]int64{},
	}
}

func (f *fakeDeliveryStore) add(doc *model.DeliveryDocument) *model.DeliveryDocument {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	f.docs[doc.ID] = doc
	return doc
}

func (f *fakeDeliveryStore) List(context.Context, repository.DeliveryFilter) ([]model.DeliveryDocument, error) {
	docs := make([]model.DeliveryDocument, 0, len(f.docs))
	for _, doc := range f.docs {
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (f *fakeDeliveryStore) GetByID(_ context.Context, id uuid.UUID) (*model.DeliveryDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return doc, nil
}

func (f *fakeDeliveryStore) Create(_ context.Context, doc *model.DeliveryDocument) error {
	f.add(doc)
	return nil
}

func (f *fakeDeliveryStore) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.updates[id] = fields
	if doc, ok := f.docs[id]; ok {
		if status, ok := fields["status"].(model.DeliveryStatus); ok {
			doc.Status = status
		}
	}
	return nil
}

func (f *fakeDeliveryStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.DeliveryStatus) error {
	doc, ok := f.docs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	doc.Status = status
	return nil
}

func (f *fakeDeliveryStore) LogStatusChange(_ context.Context, entry *model.DeliveryStatusLog) error {
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeDeliveryStore) NextStopNumber(_ context.Context, vehicleID uuid.UUID, date time.Time) (int, error) {
	max := 0
	for _, doc := range f.docs {
		if doc.VehicleID == vehicleID && doc.DeliveryDate.Equal(date) && doc.StopNumber > max {
			max = doc.StopNumber
		}
	}
	return max + 1, nil
}

func (f *fakeDeliveryStore) CountCreatedOnDate(context.Context, uuid.UUID, time.Time) (int64, error) {
	return f.created, nil
}

func (f *fakeDeliveryStore) NextNumber(_ context.Context, code string) (int64, error) {
	f.sequences[code]++
	return f.sequences[code], nil
}

type fakeApprovalStore struct {
	approvals map[uuid.UUID]*model.CapacityApprovalRequest
	logs      []model.ApprovalStatusLog
	updates   map[uuid.UUID]map[string]interface{}
	stats     model.ApprovalStats
}

func newFakeApprovalStore() *fakeApprovalStore {
	return &fakeApprovalStore{
		approvals: map[uuid.UUID]*model.CapacityApprovalRequest{},
		updates:   map[uuid.UUID]map[string]interface{}{},
	}
}

func (f *fakeApprovalStore) addPending(deliveryID, createdBy uuid.UUID) *model.CapacityApprovalRequest {
	approval := &model.CapacityApprovalRequest{
		ID:         uuid.New(),
		Number:     "KPO-00001",
		DeliveryID: deliveryID,
		Status:     model.ApprovalStatusPending,
		CreatedBy:  createdBy,
	}
	f.approvals[approval.ID] = approval
	return approval
}

func (f *fakeApprovalStore) List(context.Context, repository.ApprovalFilter) ([]model.CapacityApprovalRequest, error) {
	approvals := make([]model.CapacityApprovalRequest, 0, len(f.approvals))
	for _, approval := range f.approvals {
		approvals = append(approvals, *approval)
	}
	return approvals, nil
}

func (f *fakeApprovalStore) GetByID(_ context.Context, id uuid.UUID) (*model.CapacityApprovalRequest, error) {
	approval, ok := f.approvals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return approval, nil
}

func (f *fakeApprovalStore) PendingForDelivery(_ context.Context, deliveryID uuid.UUID) (*model.CapacityApprovalRequest, error) {
	for _, approval := range f.approvals {
		if approval.DeliveryID == deliveryID && approval.Status == model.ApprovalStatusPending {
			return approval, nil
		}
	}
	return nil, nil
}

func (f *fakeApprovalStore) Create(_ context.Context, approval *model.CapacityApprovalRequest) error {
	if approval.ID == uuid.Nil {
		approval.ID = uuid.New()
	}
	f.approvals[approval.ID] = approval
	return nil
}

func (f *fakeApprovalStore) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.updates[id] = fields
	if approval, ok := f.approvals[id]; ok {
		if status, ok := fields["status"].(model.ApprovalStatus); ok {
			approval.Status = status
		}
	}
	return nil
}

func (f *fakeApprovalStore) LogStatusChange(_ context.Context, entry *model.ApprovalStatusLog) error {
	f.logs = append(f.logs, *entry)
	return nil
}

func (f *fakeApprovalStore) Stats(context.Context) (*model.ApprovalStats, error) {
	return &f.stats, nil
}

func approvalFixture() (*ApprovalService, *fakeApprovalStore, *fakeDeliveryStore, *recordingNotifier) {
	approvals := newFakeApprovalStore()
	deliveries := newFakeDeliveryStore()
	notifier := &recordingNotifier{}
	svc := NewApprovalService(approvals, deliveries, notifier, fixedServiceClock())
	return svc, approvals, deliveries, notifier
}

func TestApproveReleasesDraftDocument(t *testing.T) {
	svc, approvals, deliveries, notifier := approvalFixture()
	manager := managerPrincipal()
	doc := deliveries.add(&model.DeliveryDocument{Number: "TSL-00001", Status: model.DeliveryStatusDraft})
	request := approvals.addPending(doc.ID, manager.UserID)

	require.NoError(t, svc.Approve(context.Background(), manager, request.ID, "uygun"))

	assert.Equal(t, model.ApprovalStatusApproved, approvals.approvals[request.ID].Status)
	fields := approvals.updates[request.ID]
	assert.Equal(t, manager.UserID, fields["approved_by"])
	approvedAt, ok := fields["approved_at"].(*time.Time)
	require.True(t, ok)
	assert.True(t, approvedAt.Equal(fixedNow))

	assert.Equal(t, model.DeliveryStatusReady, deliveries.docs[doc.ID].Status)
	require.Len(t, deliveries.logs, 1)
	assert.Equal(t, model.DeliveryStatusReady, deliveries.logs[0].NewStatus)
	require.Len(t, approvals.logs, 1)
	assert.Equal(t, model.ApprovalStatusApproved, approvals.logs[0].NewStatus)
	assert.Equal(t, []model.DeliveryStatus{model.DeliveryStatusReady}, notifier.events)
}

func TestApproveRequiresManager(t *testing.T) {
	svc, approvals, deliveries, _ := approvalFixture()
	planner := plannerPrincipal()
	doc := deliveries.add(&model.DeliveryDocument{Number: "TSL-00001", Status: model.DeliveryStatusDraft})
	request := approvals.addPending(doc.ID, planner.UserID)

	assert.ErrorIs(t, svc.Approve(context.Background(), planner, request.ID, ""), ErrPermissionDenied)
	assert.ErrorIs(t, svc.Reject(context.Background(), planner, request.ID, "olmaz"), ErrPermissionDenied)

	assert.Equal(t, model.ApprovalStatusPending, approvals.approvals[request.ID].Status)
	assert.Equal(t, model.DeliveryStatusDraft, deliveries.docs[doc.ID].Status)
	assert.Empty(t, approvals.logs)
}

func TestApproveOnlyMovesPendingRequests(t *testing.T) {
	svc, approvals, deliveries, _ := approvalFixture()
	manager := managerPrincipal()
	doc := deliveries.add(&model.DeliveryDocument{Number: "TSL-00001", Status: model.DeliveryStatusDraft})
	request := approvals.addPending(doc.ID, manager.UserID)

	require.NoError(t, svc.Approve(context.Background(), manager, request.ID, ""))

	// A resolved request is immutable, whichever way it is pushed.
	assert.ErrorIs(t, svc.Approve(context.Background(), manager, request.ID, ""), ErrInvalidStatus)
	assert.ErrorIs(t, svc.Reject(context.Background(), manager, request.ID, "geç kaldı"), ErrInvalidStatus)
	assert.ErrorIs(t, svc.Cancel(context.Background(), manager, request.ID), ErrInvalidStatus)
}

func TestRejectRequiresNote(t *testing.T) {
	svc, approvals, deliveries, _ := approvalFixture()
	manager := managerPrincipal()
	doc := deliveries.add(&model.DeliveryDocument{Number: "TSL-00001", Status: model.DeliveryStatusDraft})
	request := approvals.addPending(doc.ID, manager.UserID)

	assert.ErrorIs(t, svc.Reject(context.Background(), manager, request.ID, ""), ErrInvalidInput)
	assert.ErrorIs(t, svc.Reject(context.Background(), manager, request.ID, "   "), ErrInvalidInput)
	assert.Equal(t, model.ApprovalStatusPending, approvals.approvals[request.ID].Status)
	assert.Equal(t, model.DeliveryStatusDraft, deliveries.docs[doc.ID].Status)
}

func TestRejectCancelsDocument(t *testing.T) {
	svc, approvals, deliveries, _ := approvalFixture()
	manager := managerPrincipal()
	doc := deliveries.add(&model.DeliveryDocument{Number: "TSL-00001", Status: model.DeliveryStatusDraft})
	request := approvals.addPending(doc.ID, manager.UserID)

	require.NoError(t, svc.Reject(context.Background(), manager, request.ID, "araç bakımda"))

	assert.Equal(t, model.ApprovalStatusRejected, approvals.approvals[request.ID].Status)
	fields := approvals.updates[request.ID]
	assert.Equal(t, manager.UserID, fields["rejected_by"])
	rejectedAt, ok := fields["rejected_at"].(*time.Time)
	require.True(t, ok)
	assert.True(t, rejectedAt.Equal(fixedNow))
	assert.Equal(t, "araç bakımda", fields["rejection_note"])

	assert.Equal(t, model.DeliveryStatusCancelled, deliveries.docs[doc.ID].Status)
	require.Len(t, deliveries.logs, 1)
	assert.Equal(t, model.DeliveryStatusCancelled, deliveries.logs[0].NewStatus)
	assert.Equal(t, "kapasite onayı reddedildi", deliveries.logs[0].Note)
}

func TestCancelAllowsRequesterAndManager(t *testing.T) {
	svc, approvals, deliveries, _ := approvalFixture()
	requester := plannerPrincipal()
	outsider := plannerPrincipal()
	doc := deliveries.add(&model.DeliveryDocument{Number: "TSL-00001", Status: model.DeliveryStatusDraft})
	request := approvals.addPending(doc.ID, requester.UserID)

	assert.ErrorIs(t, svc.Cancel(context.Background(), outsider, request.ID), ErrPermissionDenied)
	assert.Equal(t, model.ApprovalStatusPending, approvals.approvals[request.ID].Status)

	require.NoError(t, svc.Cancel(context.Background(), requester, request.ID))
	assert.Equal(t, model.ApprovalStatusCancelled, approvals.approvals[request.ID].Status)
	assert.Equal(t, model.DeliveryStatusCancelled, deliveries.docs[doc.ID].Status)
}

func TestApprovalStatsManagerOnly(t *testing.T) {
	svc, approvals, _, _ := approvalFixture()
	approvals.stats = model.ApprovalStats{Pending: 3}

	_, err := svc.Stats(context.Background(), plannerPrincipal())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stats, err := svc.Stats(context.Background(), managerPrincipal())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Pending)
}
