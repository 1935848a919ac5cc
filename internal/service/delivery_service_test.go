package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/model"
)

type fakeRuleStore struct {
	weekDays    map[model.WeekDayCode]*model.WeekDay
	assignments map[[2]uuid.UUID]*model.DayDistrictAssignment
	count       int
}

func newFakeRuleStore() *fakeRuleStore {
	return &fakeRuleStore{
		weekDays:    map[model.WeekDayCode]*model.WeekDay{},
		assignments: map[[2]uuid.UUID]*model.DayDistrictAssignment{},
	}
}

func (s *fakeRuleStore) addWeekDay(code model.WeekDayCode, dailyMax int) *model.WeekDay {
	day := &model.WeekDay{ID: uuid.New(), Code: code, Name: code.Label(), Active: true, DailyMax: dailyMax}
	s.weekDays[code] = day
	return day
}

func (s *fakeRuleStore) WeekDayByCode(_ context.Context, code model.WeekDayCode) (*model.WeekDay, error) {
	return s.weekDays[code], nil
}

func (s *fakeRuleStore) GeneralAssignment(_ context.Context, weekDayID, districtID uuid.UUID) (*model.DayDistrictAssignment, error) {
	return s.assignments[[2]uuid.UUID{weekDayID, districtID}], nil
}

func (s *fakeRuleStore) CountDeliveries(context.Context, eligibility.CountFilter) (int, error) {
	return s.count, nil
}

func (s *fakeRuleStore) ActiveClosure(context.Context, uuid.UUID, time.Time) (*model.VehicleClosure, error) {
	return nil, nil
}

type deliveryTestEnv struct {
	svc        *DeliveryService
	deliveries *fakeDeliveryStore
	vehicles   *fakeVehicleStore
	approvals  *fakeApprovalStore
	rules      *fakeRuleStore
	notifier   *recordingNotifier
	vehicle    *model.Vehicle
	district   *model.District
}

func newDeliveryTestEnv(vehicleLimit int) *deliveryTestEnv {
	deliveries := newFakeDeliveryStore()
	vehicles := newFakeVehicleStore()
	districts := newFakeDistrictStore()
	approvals := newFakeApprovalStore()
	rules := newFakeRuleStore()
	notifier := &recordingNotifier{}

	district := districts.add(&model.District{Name: "Kadıköy", Side: model.DistrictSideEast, Active: true, DeliveryEnabled: true})
	vehicle := vehicles.add(&model.Vehicle{Name: "Doğu-1", Category: model.VehicleCategoryEastSide, DailyLimit: vehicleLimit, Active: true})

	// Deliveries land on the Tuesday after the fixed clock's Monday.
	tuesday := rules.addWeekDay(model.WeekDayTuesday, 20)
	rules.assignments[[2]uuid.UUID{tuesday.ID, district.ID}] = &model.DayDistrictAssignment{
		ID:            uuid.New(),
		WeekDayID:     tuesday.ID,
		DistrictID:    district.ID,
		MaxDeliveries: 10,
	}

	engine := eligibility.New(rules, fixedServiceClock(), 12)
	svc := NewDeliveryService(deliveries, vehicles, districts, approvals, engine, notifier, fixedServiceClock(), 7)
	return &deliveryTestEnv{
		svc:        svc,
		deliveries: deliveries,
		vehicles:   vehicles,
		approvals:  approvals,
		rules:      rules,
		notifier:   notifier,
		vehicle:    vehicle,
		district:   district,
	}
}

func (e *deliveryTestEnv) createInput() CreateDeliveryInput {
	return CreateDeliveryInput{
		DeliveryDate: testDay(2024, time.June, 11),
		VehicleID:    e.vehicle.ID,
		DistrictID:   e.district.ID,
		CustomerName: "Ayşe Yılmaz",
		Lines:        []DeliveryLineInput{{Product: "Koltuk takımı"}},
	}
}

func TestCreateDeliveryReady(t *testing.T) {
	env := newDeliveryTestEnv(7)

	record, err := env.svc.Create(context.Background(), plannerPrincipal(), env.createInput())
	require.NoError(t, err)

	assert.Equal(t, model.DeliveryStatusReady, record.Delivery.Status)
	assert.Equal(t, "TSL-00001", record.Delivery.Number)
	assert.Equal(t, 1, record.Delivery.StopNumber)
	assert.Nil(t, record.PendingApproval)
	assert.Equal(t, []model.DeliveryStatus{model.DeliveryStatusReady}, env.notifier.events)
}

func TestCreateOverflowOpensApprovalRequest(t *testing.T) {
	env := newDeliveryTestEnv(2)
	env.rules.count = 2
	env.vehicles.booked[env.vehicle.ID] = 2

	input := env.createInput()
	input.RequestApproval = true
	record, err := env.svc.Create(context.Background(), managerPrincipal(), input)
	require.NoError(t, err)

	assert.Equal(t, model.DeliveryStatusDraft, record.Delivery.Status)
	require.NotNil(t, record.PendingApproval)
	assert.Equal(t, "KPO-00001", record.PendingApproval.Number)
	assert.Equal(t, model.ApprovalStatusPending, record.PendingApproval.Status)

	approval := env.approvals.approvals[record.PendingApproval.ID]
	require.NotNil(t, approval)
	assert.Equal(t, 2, approval.ExistingCount)
	assert.Equal(t, 2, approval.DailyLimit)
	require.Len(t, env.approvals.logs, 1)
	assert.Equal(t, model.ApprovalStatusPending, env.approvals.logs[0].NewStatus)

	// No scheduling notice while the document waits as a draft.
	assert.Empty(t, env.notifier.events)
}

func TestCreateOverflowRequiresManager(t *testing.T) {
	env := newDeliveryTestEnv(2)
	env.rules.count = 2

	input := env.createInput()
	input.RequestApproval = true
	_, err := env.svc.Create(context.Background(), plannerPrincipal(), input)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateEnforcesUserDailyLimit(t *testing.T) {
	env := newDeliveryTestEnv(7)
	env.deliveries.created = 7

	_, err := env.svc.Create(context.Background(), plannerPrincipal(), env.createInput())
	assert.ErrorIs(t, err, ErrDailyLimitReached)

	// Managers are not bound by the per-user creation cap.
	_, err = env.svc.Create(context.Background(), managerPrincipal(), env.createInput())
	require.NoError(t, err)
}

func TestCompleteStampsDeliveredAtFromClock(t *testing.T) {
	env := newDeliveryTestEnv(7)
	doc := env.deliveries.add(&model.DeliveryDocument{
		Number: "TSL-00001",
		Status: model.DeliveryStatusInTransit,
	})

	require.NoError(t, env.svc.Complete(context.Background(), managerPrincipal(), doc.ID, CompleteDeliveryInput{
		ReceivedBy: "Ali Veli",
		Note:       "kapıya bırakıldı",
	}))

	fields := env.deliveries.updates[doc.ID]
	require.NotNil(t, fields)
	deliveredAt, ok := fields["delivered_at"].(*time.Time)
	require.True(t, ok)
	assert.True(t, deliveredAt.Equal(fixedNow))

	expr, ok := fields["notes"].(clause.Expr)
	require.True(t, ok)
	require.Len(t, expr.Vars, 1)
	note := expr.Vars[0].(string)
	assert.Contains(t, note, fixedNow.Format("02.01.2006 15:04"))
	assert.Contains(t, note, "kapıya bırakıldı")

	assert.Equal(t, model.DeliveryStatusDelivered, env.deliveries.docs[doc.ID].Status)
	assert.Equal(t, []model.DeliveryStatus{model.DeliveryStatusDelivered}, env.notifier.events)
}

func TestCancelAllowsCreatorAndManager(t *testing.T) {
	env := newDeliveryTestEnv(7)
	creator := plannerPrincipal()
	doc := env.deliveries.add(&model.DeliveryDocument{
		Number:    "TSL-00001",
		Status:    model.DeliveryStatusReady,
		CreatedBy: creator.UserID,
	})

	err := env.svc.Cancel(context.Background(), plannerPrincipal(), doc.ID, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, env.svc.Cancel(context.Background(), creator, doc.ID, "müşteri vazgeçti"))
	assert.Equal(t, model.DeliveryStatusCancelled, env.deliveries.docs[doc.ID].Status)

	// Terminal documents stay put.
	assert.ErrorIs(t, env.svc.Cancel(context.Background(), creator, doc.ID, ""), ErrInvalidStatus)
}
