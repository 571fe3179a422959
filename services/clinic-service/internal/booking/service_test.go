package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/scheduling"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/storage/memstore"
)

var (
	now    = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)
)

func at(hour, minute int) time.Time {
	return time.Date(monday.Year(), monday.Month(), monday.Day(), hour, minute, 0, 0, time.UTC)
}

type fixture struct {
	store *memstore.Store
	svc   *Service
	typ   model.AppointmentType
}

func newFixture(t *testing.T, appts AppointmentStore) fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	if appts == nil {
		appts = store
	}
	sched := scheduling.New(store, appts, scheduling.Config{Now: func() time.Time { return now }})
	if _, err := sched.SetWeeklySchedule(ctx, int(time.Monday), []model.TimeSlot{{From: "09:00", To: "12:00"}}); err != nil {
		t.Fatalf("SetWeeklySchedule failed: %v", err)
	}
	types := NewTypeService(store)
	typ, err := types.Create(ctx, TypeInput{Name: "Facial", DurationMinutes: 45, Price: 200})
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(appts, store, sched, logger, Config{Now: func() time.Time { return now }})
	return fixture{store: store, svc: svc, typ: typ}
}

func TestBookPersistsTypeDuration(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	appt, err := f.svc.Book(ctx, BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(9, 0)})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if appt.DurationMinutes != 45 || appt.Status != model.StatusScheduled {
		t.Fatalf("unexpected appointment %+v", appt)
	}

	// Shortening the type later must not shrink the stored booking.
	short := 15
	if _, err := NewTypeService(f.store).Update(ctx, f.typ.ID, TypePatch{DurationMinutes: &short}); err != nil {
		t.Fatalf("update type: %v", err)
	}
	_, err = f.svc.Book(ctx, BookRequest{UserID: "u2", AppointmentTypeID: f.typ.ID, Start: at(9, 30)})
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError inside the 45 minute booking, got %v", err)
	}
	if _, err := f.svc.Book(ctx, BookRequest{UserID: "u2", AppointmentTypeID: f.typ.ID, Start: at(9, 45)}); err != nil {
		t.Fatalf("expected 09:45 to be free: %v", err)
	}

	var booked int
	for _, e := range f.store.Events() {
		if e.EventType == outbox.TopicAppointmentBooked {
			booked++
		}
	}
	if booked != 2 {
		t.Fatalf("expected 2 booked events, got %d", booked)
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cases := []struct {
		name  string
		req   BookRequest
		field string
	}{
		{"missing user", BookRequest{AppointmentTypeID: f.typ.ID, Start: at(9, 0)}, "userId"},
		{"missing type", BookRequest{UserID: "u1", Start: at(9, 0)}, "appointmentTypeId"},
		{"past start", BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: now.Add(-time.Hour)}, "date"},
		{"start with seconds", BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(11, 15).Add(30 * time.Second)}, "date"},
		{"unknown type", BookRequest{UserID: "u1", AppointmentTypeID: "nope", Start: at(9, 0)}, "appointmentTypeId"},
		{"canceled status", BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(9, 0), Status: model.StatusCanceled}, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Book(ctx, tc.req)
			var v *model.ValidationError
			if !errors.As(err, &v) || v.Field != tc.field {
				t.Fatalf("expected ValidationError on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestBookOutsideHoursIsConflict(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Book(context.Background(), BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(11, 30)})
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

// racingStore simulates another replica winning the slot between check and insert.
type racingStore struct {
	*memstore.Store
	failures int
	calls    int
}

func (r *racingStore) CreateAppointment(ctx context.Context, a model.Appointment, events ...outbox.Event) error {
	r.calls++
	if r.calls <= r.failures {
		return &model.ConflictError{Message: "exclusion constraint"}
	}
	return r.Store.CreateAppointment(ctx, a, events...)
}

func TestBookRetriesOnceAfterLostRace(t *testing.T) {
	race := &racingStore{failures: 1}
	f := newFixture(t, race)
	race.Store = f.store

	if _, err := f.svc.Book(context.Background(), BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(10, 0)}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if race.calls != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", race.calls)
	}
}

func TestBookGivesUpAfterSecondLostRace(t *testing.T) {
	race := &racingStore{failures: 2}
	f := newFixture(t, race)
	race.Store = f.store

	_, err := f.svc.Book(context.Background(), BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(10, 0)})
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) || conflict.Message != "slot no longer available" {
		t.Fatalf("expected slot no longer available, got %v", err)
	}
	if race.calls != 2 {
		t.Fatalf("expected exactly 2 insert attempts, got %d", race.calls)
	}
}

func TestUpdateRechecksExcludingSelf(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	appt, err := f.svc.Book(ctx, BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(9, 0)})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	other, err := f.svc.Book(ctx, BookRequest{UserID: "u2", AppointmentTypeID: f.typ.ID, Start: at(10, 30)})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	// Shift by 15 minutes, overlapping only itself.
	shifted := at(9, 15)
	if _, err := f.svc.Update(ctx, appt.ID, UpdateRequest{Start: &shifted}); err != nil {
		t.Fatalf("moving within own slot must succeed: %v", err)
	}

	clash := at(10, 15)
	_, err = f.svc.Update(ctx, appt.ID, UpdateRequest{Start: &clash})
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError against %s, got %v", other.ID, err)
	}

	notes := "bring previous results"
	got, err := f.svc.Update(ctx, appt.ID, UpdateRequest{Notes: &notes})
	if err != nil || got.Notes != notes {
		t.Fatalf("notes update failed: %+v (%v)", got, err)
	}
}

func TestCancelFreesSlotAndIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	appt, err := f.svc.Book(ctx, BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(9, 0)})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err := f.svc.Cancel(ctx, appt.ID)
		if err != nil || got.Status != model.StatusCanceled {
			t.Fatalf("Cancel #%d: %+v (%v)", i+1, got, err)
		}
	}
	var cancelled int
	for _, e := range f.store.Events() {
		if e.EventType == outbox.TopicAppointmentCancelled {
			cancelled++
		}
	}
	if cancelled != 1 {
		t.Fatalf("expected 1 cancel event, got %d", cancelled)
	}
	if _, err := f.svc.Book(ctx, BookRequest{UserID: "u2", AppointmentTypeID: f.typ.ID, Start: at(9, 0)}); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}
}

func TestDeleteAndListByDate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	appt, err := f.svc.Book(ctx, BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(9, 0)})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	list, err := f.svc.ListByDate(ctx, monday)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 appointment on Monday, got %d (%v)", len(list), err)
	}
	if err := f.svc.Delete(ctx, appt.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var nf *model.NotFoundError
	if err := f.svc.Delete(ctx, appt.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.svc.Book(ctx, BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(9, 0)}); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	if _, err := f.svc.Book(ctx, BookRequest{UserID: "u2", AppointmentTypeID: f.typ.ID, Start: at(10, 0), Status: model.StatusConfirmed}); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	got, err := f.svc.List(ctx, ListFilter{Status: model.StatusConfirmed})
	if err != nil || len(got) != 1 || got[0].UserID != "u2" {
		t.Fatalf("unexpected status filter result %+v (%v)", got, err)
	}
	var v *model.ValidationError
	if _, err := f.svc.List(ctx, ListFilter{Status: "lost"}); !errors.As(err, &v) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := f.svc.List(ctx, ListFilter{From: at(12, 0), To: at(9, 0)}); !errors.As(err, &v) {
		t.Fatalf("expected ValidationError for inverted range, got %v", err)
	}
}

func TestStartWithSecondsIsNeverStored(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	appt, err := f.svc.Book(ctx, BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(10, 0)})
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	moved := at(11, 15).Add(30 * time.Second)
	_, err = f.svc.Update(ctx, appt.ID, UpdateRequest{Start: &moved})
	var v *model.ValidationError
	if !errors.As(err, &v) || v.Field != "date" {
		t.Fatalf("expected ValidationError on date, got %v", err)
	}

	stored, err := f.svc.Get(ctx, appt.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !stored.Start.Equal(at(10, 0)) || !stored.End().Equal(at(10, 45)) {
		t.Fatalf("appointment changed: %s-%s", stored.Start, stored.End())
	}
	list, err := f.svc.ListByDate(ctx, monday)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected only the original booking, got %v (%v)", list, err)
	}
}
