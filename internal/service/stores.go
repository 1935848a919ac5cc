package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"delivery-service/internal/model"
	"delivery-service/internal/repository"
)

// The services depend on these narrowed persistence surfaces instead of the
// concrete repository types, the same seam the eligibility engine uses for
// its rule store. The repositories satisfy them as-is; tests substitute
// in-memory fakes.

// DeliveryStateStore is the slice of delivery persistence the approval
// workflow needs to move a linked document.
type DeliveryStateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.DeliveryDocument, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) error
	LogStatusChange(ctx context.Context, entry *model.DeliveryStatusLog) error
}

type DeliveryStore interface {
	DeliveryStateStore
	List(ctx context.Context, filter repository.DeliveryFilter) ([]model.DeliveryDocument, error)
	Create(ctx context.Context, doc *model.DeliveryDocument) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	NextStopNumber(ctx context.Context, vehicleID uuid.UUID, date time.Time) (int, error)
	CountCreatedOnDate(ctx context.Context, userID uuid.UUID, date time.Time) (int64, error)
	NextNumber(ctx context.Context, code string) (int64, error)
}

type VehicleStore interface {
	List(ctx context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	Create(ctx context.Context, vehicle *model.Vehicle) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ReplaceDistricts(ctx context.Context, vehicle *model.Vehicle, districts []model.District) error
	BookedCounts(ctx context.Context, vehicleIDs []uuid.UUID, date time.Time) (map[uuid.UUID]int, error)
}

type DistrictStore interface {
	List(ctx context.Context, filter repository.DistrictFilter) ([]model.District, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.District, error)
	GetByName(ctx context.Context, name string) (*model.District, error)
	Create(ctx context.Context, district *model.District) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	SeedIstanbul(ctx context.Context) (int, error)
}

type ClosureStore interface {
	List(ctx context.Context, vehicleID *uuid.UUID, activeOnly bool) ([]model.VehicleClosure, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.VehicleClosure, error)
	Create(ctx context.Context, closure *model.VehicleClosure) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	FindOverlapping(ctx context.Context, vehicleID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*model.VehicleClosure, error)
}

type ApprovalStore interface {
	List(ctx context.Context, filter repository.ApprovalFilter) ([]model.CapacityApprovalRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.CapacityApprovalRequest, error)
	PendingForDelivery(ctx context.Context, deliveryID uuid.UUID) (*model.CapacityApprovalRequest, error)
	Create(ctx context.Context, approval *model.CapacityApprovalRequest) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	LogStatusChange(ctx context.Context, entry *model.ApprovalStatusLog) error
	Stats(ctx context.Context) (*model.ApprovalStats, error)
}

type ScheduleStore interface {
	ListWeekDays(ctx context.Context) ([]model.WeekDay, error)
	GetWeekDay(ctx context.Context, id uuid.UUID) (*model.WeekDay, error)
	UpdateWeekDay(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ListAssignments(ctx context.Context, weekDayID, districtID *uuid.UUID) ([]model.DayDistrictAssignment, error)
	GeneralAssignment(ctx context.Context, weekDayID, districtID uuid.UUID) (*model.DayDistrictAssignment, error)
	DatedAssignment(ctx context.Context, weekDayID, districtID uuid.UUID, date time.Time) (*model.DayDistrictAssignment, error)
	CreateAssignment(ctx context.Context, assignment *model.DayDistrictAssignment) error
	UpdateAssignment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	DeleteAssignment(ctx context.Context, id uuid.UUID) error
}
