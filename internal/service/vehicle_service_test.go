package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"delivery-service/internal/model"
	"delivery-service/internal/repository"
)

type fakeVehicleStore struct {
	vehicles map[uuid.UUID]*model.Vehicle
	updates  map[uuid.UUID]map[string]interface{}
	booked   map[uuid.UUID]int
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{
		vehicles: map[uuid.UUID]*model.Vehicle{},
		updates:  map[uuid.UUID]map[string]interface{}{},
		booked:   map[uuid.UUID]int{},
	}
}

func (f *fakeVehicleStore) add(vehicle *model.Vehicle) *model.Vehicle {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	f.vehicles[vehicle.ID] = vehicle
	return vehicle
}

// ActiveOnly narrows on the active flag alone; date-dependent closedness is
// the caller's concern.
func (f *fakeVehicleStore) List(_ context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	vehicles := make([]model.Vehicle, 0, len(f.vehicles))
	for _, vehicle := range f.vehicles {
		if filter.ActiveOnly && !vehicle.Active {
			continue
		}
		vehicles = append(vehicles, *vehicle)
	}
	return vehicles, nil
}

func (f *fakeVehicleStore) GetByID(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, ok := f.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vehicle, nil
}

func (f *fakeVehicleStore) Create(_ context.Context, vehicle *model.Vehicle) error {
	f.add(vehicle)
	return nil
}

func (f *fakeVehicleStore) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.updates[id] = fields
	return nil
}

func (f *fakeVehicleStore) ReplaceDistricts(_ context.Context, vehicle *model.Vehicle, districts []model.District) error {
	if stored, ok := f.vehicles[vehicle.ID]; ok {
		stored.Districts = districts
	}
	return nil
}

func (f *fakeVehicleStore) BookedCounts(_ context.Context, vehicleIDs []uuid.UUID, _ time.Time) (map[uuid.UUID]int, error) {
	counts := map[uuid.UUID]int{}
	for _, id := range vehicleIDs {
		counts[id] = f.booked[id]
	}
	return counts, nil
}

type fakeDistrictStore struct {
	districts map[uuid.UUID]*model.District
}

func newFakeDistrictStore() *fakeDistrictStore {
	return &fakeDistrictStore{districts: map[uuid.UUID]*model.District{}}
}

func (f *fakeDistrictStore) add(district *model.District) *model.District {
	if district.ID == uuid.Nil {
		district.ID = uuid.New()
	}
	f.districts[district.ID] = district
	return district
}

func (f *fakeDistrictStore) List(_ context.Context, filter repository.DistrictFilter) ([]model.District, error) {
	districts := make([]model.District, 0, len(f.districts))
	for _, district := range f.districts {
		if filter.ActiveOnly && !district.Active {
			continue
		}
		if filter.Side != nil && district.Side != *filter.Side {
			continue
		}
		districts = append(districts, *district)
	}
	return districts, nil
}

func (f *fakeDistrictStore) GetByID(_ context.Context, id uuid.UUID) (*model.District, error) {
	district, ok := f.districts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return district, nil
}

func (f *fakeDistrictStore) GetByName(_ context.Context, name string) (*model.District, error) {
	for _, district := range f.districts {
		if district.Name == name {
			return district, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDistrictStore) Create(_ context.Context, district *model.District) error {
	f.add(district)
	return nil
}

func (f *fakeDistrictStore) Update(context.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}

func (f *fakeDistrictStore) SeedIstanbul(context.Context) (int, error) {
	return 0, nil
}

type fakeClosureStore struct {
	closures map[uuid.UUID]*model.VehicleClosure
}

func newFakeClosureStore() *fakeClosureStore {
	return &fakeClosureStore{closures: map[uuid.UUID]*model.VehicleClosure{}}
}

func (f *fakeClosureStore) add(closure *model.VehicleClosure) *model.VehicleClosure {
	if closure.ID == uuid.Nil {
		closure.ID = uuid.New()
	}
	f.closures[closure.ID] = closure
	return closure
}

func (f *fakeClosureStore) List(_ context.Context, vehicleID *uuid.UUID, activeOnly bool) ([]model.VehicleClosure, error) {
	closures := make([]model.VehicleClosure, 0, len(f.closures))
	for _, closure := range f.closures {
		if vehicleID != nil && closure.VehicleID != *vehicleID {
			continue
		}
		if activeOnly && !closure.Active {
			continue
		}
		closures = append(closures, *closure)
	}
	return closures, nil
}

func (f *fakeClosureStore) GetByID(_ context.Context, id uuid.UUID) (*model.VehicleClosure, error) {
	closure, ok := f.closures[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return closure, nil
}

func (f *fakeClosureStore) Create(_ context.Context, closure *model.VehicleClosure) error {
	f.add(closure)
	return nil
}

func (f *fakeClosureStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	closure, ok := f.closures[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	closure.Active = active
	return nil
}

func (f *fakeClosureStore) FindOverlapping(_ context.Context, vehicleID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*model.VehicleClosure, error) {
	for _, closure := range f.closures {
		if !closure.Active || closure.VehicleID != vehicleID {
			continue
		}
		if excludeID != nil && closure.ID == *excludeID {
			continue
		}
		if !end.Before(closure.StartDate) && !start.After(closure.EndDate) {
			return closure, nil
		}
	}
	return nil, nil
}

func vehicleFixture() (*VehicleService, *fakeVehicleStore, *fakeDistrictStore, *fakeClosureStore) {
	vehicles := newFakeVehicleStore()
	districts := newFakeDistrictStore()
	closures := newFakeClosureStore()
	svc := NewVehicleService(vehicles, districts, closures, fixedServiceClock(), 7)
	return svc, vehicles, districts, closures
}

func testDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestSuggestIncludesVehicleAfterClosureLapses(t *testing.T) {
	svc, vehicles, districts, closures := vehicleFixture()
	district := districts.add(&model.District{Name: "Kadıköy", Side: model.DistrictSideEast, Active: true, DeliveryEnabled: true})

	// The denormalized closed flag still reads true from the lapsed range;
	// only the closure table decides availability.
	lapsed := vehicles.add(&model.Vehicle{
		Name:            "Doğu-1",
		Category:        model.VehicleCategoryEastSide,
		DailyLimit:      7,
		Active:          true,
		TemporaryClosed: true,
	})
	closures.add(&model.VehicleClosure{
		VehicleID: lapsed.ID,
		StartDate: testDay(2024, time.June, 1),
		EndDate:   testDay(2024, time.June, 5),
		Reason:    model.ClosureReasonMaintenance,
		Active:    true,
	})

	stillClosed := vehicles.add(&model.Vehicle{
		Name:       "Doğu-2",
		Category:   model.VehicleCategoryEastSide,
		DailyLimit: 7,
		Active:     true,
	})
	closures.add(&model.VehicleClosure{
		VehicleID: stillClosed.ID,
		StartDate: testDay(2024, time.June, 10),
		EndDate:   testDay(2024, time.June, 12),
		Reason:    model.ClosureReasonMaintenance,
		Active:    true,
	})

	suggestions, err := svc.Suggest(context.Background(), managerPrincipal(), district.ID, testDay(2024, time.June, 11))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, lapsed.ID, suggestions[0].Vehicle.ID)
}

func TestSuggestRanksByRemainingCapacity(t *testing.T) {
	svc, vehicles, districts, _ := vehicleFixture()
	district := districts.add(&model.District{Name: "Üsküdar", Side: model.DistrictSideEast, Active: true, DeliveryEnabled: true})

	busy := vehicles.add(&model.Vehicle{Name: "Doğu-1", Category: model.VehicleCategoryEastSide, DailyLimit: 7, Active: true})
	idle := vehicles.add(&model.Vehicle{Name: "Doğu-2", Category: model.VehicleCategoryEastSide, DailyLimit: 7, Active: true})
	full := vehicles.add(&model.Vehicle{Name: "Doğu-3", Category: model.VehicleCategoryEastSide, DailyLimit: 5, Active: true})
	wrongSide := vehicles.add(&model.Vehicle{Name: "Batı-1", Category: model.VehicleCategoryWestSide, DailyLimit: 7, Active: true})
	vehicles.booked[busy.ID] = 5
	vehicles.booked[idle.ID] = 1
	vehicles.booked[full.ID] = 5
	vehicles.booked[wrongSide.ID] = 0

	suggestions, err := svc.Suggest(context.Background(), plannerPrincipal(), district.ID, testDay(2024, time.June, 11))
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, idle.ID, suggestions[0].Vehicle.ID)
	assert.Equal(t, 6, suggestions[0].RemainingCapacity)
	assert.Equal(t, busy.ID, suggestions[1].Vehicle.ID)
	assert.Equal(t, 2, suggestions[1].RemainingCapacity)
}

func TestCloseMarksVehicleClosedForToday(t *testing.T) {
	svc, vehicles, _, _ := vehicleFixture()
	manager := managerPrincipal()
	vehicle := vehicles.add(&model.Vehicle{Name: "Doğu-1", Category: model.VehicleCategoryEastSide, DailyLimit: 7, Active: true})

	// The range contains the clock's today, so the flag flips on.
	closure, err := svc.Close(context.Background(), manager, CreateClosureInput{
		VehicleID: vehicle.ID,
		StartDate: testDay(2024, time.June, 10),
		EndDate:   testDay(2024, time.June, 12),
		Reason:    model.ClosureReasonMaintenance,
	})
	require.NoError(t, err)

	fields := vehicles.updates[vehicle.ID]
	require.NotNil(t, fields)
	assert.Equal(t, true, fields["temporary_closed"])
	assert.Equal(t, model.ClosureReasonMaintenance.Label(), fields["closure_reason"])

	require.NoError(t, svc.Reopen(context.Background(), manager, closure.ID))
	fields = vehicles.updates[vehicle.ID]
	assert.Equal(t, false, fields["temporary_closed"])
}

func TestCloseFutureRangeLeavesVehicleOpen(t *testing.T) {
	svc, vehicles, _, _ := vehicleFixture()
	vehicle := vehicles.add(&model.Vehicle{Name: "Doğu-1", Category: model.VehicleCategoryEastSide, DailyLimit: 7, Active: true})

	_, err := svc.Close(context.Background(), managerPrincipal(), CreateClosureInput{
		VehicleID: vehicle.ID,
		StartDate: testDay(2024, time.June, 20),
		EndDate:   testDay(2024, time.June, 22),
		Reason:    model.ClosureReasonMaintenance,
	})
	require.NoError(t, err)

	fields := vehicles.updates[vehicle.ID]
	require.NotNil(t, fields)
	assert.Equal(t, false, fields["temporary_closed"])
}

func TestCloseRejectsOverlappingRange(t *testing.T) {
	svc, vehicles, _, closures := vehicleFixture()
	vehicle := vehicles.add(&model.Vehicle{Name: "Doğu-1", Category: model.VehicleCategoryEastSide, DailyLimit: 7, Active: true})
	closures.add(&model.VehicleClosure{
		VehicleID: vehicle.ID,
		StartDate: testDay(2024, time.June, 10),
		EndDate:   testDay(2024, time.June, 12),
		Reason:    model.ClosureReasonMaintenance,
		Active:    true,
	})

	_, err := svc.Close(context.Background(), managerPrincipal(), CreateClosureInput{
		VehicleID: vehicle.ID,
		StartDate: testDay(2024, time.June, 12),
		EndDate:   testDay(2024, time.June, 14),
		Reason:    model.ClosureReasonMaintenance,
	})
	assert.ErrorIs(t, err, ErrConflict)
}
