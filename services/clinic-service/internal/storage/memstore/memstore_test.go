package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestSpecialHoursUniquePerDay(t *testing.T) {
	ctx := context.Background()
	s := New()
	sh := model.SpecialHours{ID: "a", Date: day("2030-03-04"), TimeSlots: []model.TimeSlot{{From: "14:00", To: "15:00"}}}
	if err := s.CreateSpecialHours(ctx, sh, outbox.Event{EventType: outbox.TopicScheduleChanged}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	sh.ID = "b"
	var dup *model.DuplicateError
	if err := s.CreateSpecialHours(ctx, sh); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if got := len(s.Events()); got != 1 {
		t.Fatalf("expected 1 event recorded, got %d", got)
	}

	var nf *model.NotFoundError
	if err := s.DeleteClosedDay(ctx, day("2030-03-04")); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListOverridesByRange(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i, d := range []string{"2030-01-31", "2030-02-01", "2030-02-28", "2030-03-01"} {
		if err := s.CreateClosedDay(ctx, model.ClosedDay{ID: string(rune('a' + i)), Date: day(d)}); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}
	got, _ := s.ListClosedDays(ctx, day("2030-02-01"), day("2030-02-28"))
	if len(got) != 2 {
		t.Fatalf("expected 2 closed days in February, got %d", len(got))
	}
	open, _ := s.ListClosedDays(ctx, day("2030-02-01"), time.Time{})
	if len(open) != 3 {
		t.Fatalf("expected 3 closed days from February on, got %d", len(open))
	}
}

func TestAppointmentOverlapGuard(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateAppointmentType(ctx, model.AppointmentType{ID: "t1", Name: "Facial", DurationMinutes: 60}); err != nil {
		t.Fatalf("create type: %v", err)
	}
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	first := model.Appointment{ID: "a1", AppointmentTypeID: "t1", Start: start, DurationMinutes: 60, Status: model.StatusScheduled}
	if err := s.CreateAppointment(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}

	var conflict *model.ConflictError
	overlap := model.Appointment{ID: "a2", AppointmentTypeID: "t1", Start: start.Add(30 * time.Minute), DurationMinutes: 30, Status: model.StatusConfirmed}
	if err := s.CreateAppointment(ctx, overlap); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	adjacent := model.Appointment{ID: "a3", AppointmentTypeID: "t1", Start: start.Add(time.Hour), DurationMinutes: 30, Status: model.StatusScheduled}
	if err := s.CreateAppointment(ctx, adjacent); err != nil {
		t.Fatalf("adjacent booking must be allowed: %v", err)
	}

	canceled := overlap
	canceled.Status = model.StatusCanceled
	if err := s.CreateAppointment(ctx, canceled); err != nil {
		t.Fatalf("canceled appointment must not occupy time: %v", err)
	}

	found, _ := s.FindAppointments(ctx, model.AppointmentFilter{
		From:     start,
		To:       start.Add(2 * time.Hour),
		Statuses: model.OccupyingStatuses,
	})
	if len(found) != 2 {
		t.Fatalf("expected 2 occupying appointments, got %d", len(found))
	}
}

func TestAppointmentTypeNameUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateAppointmentType(ctx, model.AppointmentType{ID: "t1", Name: "Facial", DurationMinutes: 60}); err != nil {
		t.Fatalf("create type: %v", err)
	}
	var dup *model.DuplicateError
	if err := s.CreateAppointmentType(ctx, model.AppointmentType{ID: "t2", Name: "FACIAL", DurationMinutes: 30}); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
}
