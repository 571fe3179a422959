package scheduling

import (
	"context"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
)

// ScheduleStore persists the weekly schedule and the per-date overrides.
// Date arguments are day keys. A zero `to` leaves the range open-ended.
// Mutations write the given outbox events in the same transaction.
type ScheduleStore interface {
	ListWeekly(ctx context.Context) ([]model.WeeklyScheduleEntry, error)
	UpsertWeekly(ctx context.Context, entry model.WeeklyScheduleEntry, events ...outbox.Event) error

	ListSpecialHours(ctx context.Context, from, to time.Time) ([]model.SpecialHours, error)
	CreateSpecialHours(ctx context.Context, sh model.SpecialHours, events ...outbox.Event) error
	DeleteSpecialHours(ctx context.Context, day time.Time, events ...outbox.Event) error

	ListClosedDays(ctx context.Context, from, to time.Time) ([]model.ClosedDay, error)
	CreateClosedDay(ctx context.Context, cd model.ClosedDay, events ...outbox.Event) error
	DeleteClosedDay(ctx context.Context, day time.Time, events ...outbox.Event) error
}

// AppointmentReader is the read side the availability checks need.
type AppointmentReader interface {
	FindAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error)
}
