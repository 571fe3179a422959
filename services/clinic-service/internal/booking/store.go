package booking

import (
	"context"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
)

// AppointmentStore persists appointments. Writes that make an appointment
// overlap another occupying one fail with *model.ConflictError.
type AppointmentStore interface {
	FindAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id string) (model.Appointment, error)
	CreateAppointment(ctx context.Context, a model.Appointment, events ...outbox.Event) error
	UpdateAppointment(ctx context.Context, a model.Appointment, events ...outbox.Event) error
	DeleteAppointment(ctx context.Context, id string, events ...outbox.Event) error
}

type AppointmentTypeStore interface {
	CreateAppointmentType(ctx context.Context, t model.AppointmentType) error
	GetAppointmentType(ctx context.Context, id string) (model.AppointmentType, error)
	ListAppointmentTypes(ctx context.Context, f model.AppointmentTypeFilter) ([]model.AppointmentType, error)
	UpdateAppointmentType(ctx context.Context, t model.AppointmentType) error
	DeleteAppointmentType(ctx context.Context, id string) error
}

// Availability is the advisory check run before every write that occupies time.
type Availability interface {
	IsSlotAvailableExcluding(ctx context.Context, start time.Time, durationMinutes int, excludeID string) (bool, error)
}
