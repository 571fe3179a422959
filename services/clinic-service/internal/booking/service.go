package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

type Config struct {
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	appts  AppointmentStore
	types  AppointmentTypeStore
	avail  Availability
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewService(appts AppointmentStore, types AppointmentTypeStore, avail Availability, logger *slog.Logger, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{appts: appts, types: types, avail: avail, logger: logger, loc: cfg.Location, now: cfg.Now}
}

type BookRequest struct {
	UserID            string
	AppointmentTypeID string
	Start             time.Time
	Status            string
	Notes             string
}

// UpdateRequest changes only the non-nil fields.
type UpdateRequest struct {
	Start             *time.Time
	AppointmentTypeID *string
	Status            *string
	Notes             *string
}

type ListFilter struct {
	UserID string
	Status string
	TypeID string
	From   time.Time
	To     time.Time
}

// Book creates an appointment after checking the slot. The duration is copied
// from the appointment type and stays with the appointment.
func (s *Service) Book(ctx context.Context, req BookRequest) (model.Appointment, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.AppointmentTypeID = strings.TrimSpace(req.AppointmentTypeID)
	switch {
	case req.UserID == "":
		return model.Appointment{}, model.Invalid("userId", "is required")
	case req.AppointmentTypeID == "":
		return model.Appointment{}, model.Invalid("appointmentTypeId", "is required")
	case req.Start.IsZero():
		return model.Appointment{}, model.Invalid("date", "is required")
	case !req.Start.After(s.now()):
		return model.Appointment{}, model.Invalid("date", "appointment date must be in the future")
	case !timeofday.OnMinute(req.Start):
		return model.Appointment{}, model.Invalid("date", "must be on a whole minute")
	}
	status := req.Status
	if status == "" {
		status = model.StatusScheduled
	}
	if !model.Occupies(status) {
		return model.Appointment{}, model.Invalid("status", "new appointments must be scheduled or confirmed")
	}

	typ, err := s.lookupType(ctx, req.AppointmentTypeID)
	if err != nil {
		return model.Appointment{}, err
	}

	now := s.now().UTC()
	appt := model.Appointment{
		ID:                uuid.NewString(),
		UserID:            req.UserID,
		AppointmentTypeID: typ.ID,
		Start:             req.Start.UTC(),
		DurationMinutes:   typ.DurationMinutes,
		Status:            status,
		Notes:             strings.TrimSpace(req.Notes),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	evt, err := appointmentEvent(appt, outbox.TopicAppointmentBooked)
	if err != nil {
		return model.Appointment{}, err
	}
	err = s.reserve(ctx, appt, "", func() error {
		return s.appts.CreateAppointment(ctx, appt, evt)
	})
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Appointment{}, model.Invalid("id", "is required")
	}
	return s.appts.GetAppointment(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]model.Appointment, error) {
	filter := model.AppointmentFilter{UserID: f.UserID, TypeID: f.TypeID, From: f.From, To: f.To}
	if f.Status != "" {
		if !model.ValidStatus(f.Status) {
			return nil, model.Invalid("status", "unknown status %q", f.Status)
		}
		filter.Statuses = []string{f.Status}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return nil, model.Invalid("startDate", "startDate must be before endDate")
	}
	return s.appts.FindAppointments(ctx, filter)
}

// ListByDate returns the appointments starting on a calendar day in the clinic zone.
func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	day := timeofday.DateOf(date)
	from := timeofday.At(day, 0, s.loc)
	to := timeofday.At(day.AddDate(0, 0, 1), 0, s.loc)
	appts, err := s.appts.FindAppointments(ctx, model.AppointmentFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	out := appts[:0]
	for _, a := range appts {
		if !a.Start.Before(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (model.Appointment, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	next := cur
	moved := false
	if req.Start != nil {
		if !req.Start.After(s.now()) {
			return model.Appointment{}, model.Invalid("date", "appointment date must be in the future")
		}
		if !timeofday.OnMinute(*req.Start) {
			return model.Appointment{}, model.Invalid("date", "must be on a whole minute")
		}
		next.Start = req.Start.UTC()
		moved = !next.Start.Equal(cur.Start)
	}
	if req.AppointmentTypeID != nil && strings.TrimSpace(*req.AppointmentTypeID) != cur.AppointmentTypeID {
		typ, err := s.lookupType(ctx, strings.TrimSpace(*req.AppointmentTypeID))
		if err != nil {
			return model.Appointment{}, err
		}
		next.AppointmentTypeID = typ.ID
		next.DurationMinutes = typ.DurationMinutes
		moved = true
	}
	if req.Status != nil {
		if !model.ValidStatus(*req.Status) {
			return model.Appointment{}, model.Invalid("status", "unknown status %q", *req.Status)
		}
		next.Status = *req.Status
	}
	if req.Notes != nil {
		next.Notes = strings.TrimSpace(*req.Notes)
	}
	next.UpdatedAt = s.now().UTC()

	evt, err := appointmentEvent(next, outbox.TopicAppointmentUpdated)
	if err != nil {
		return model.Appointment{}, err
	}
	write := func() error { return s.appts.UpdateAppointment(ctx, next, evt) }

	reactivated := model.Occupies(next.Status) && !model.Occupies(cur.Status)
	if model.Occupies(next.Status) && (moved || reactivated) {
		err = s.reserve(ctx, next, next.ID, write)
	} else {
		err = write()
	}
	if err != nil {
		return model.Appointment{}, err
	}
	return next, nil
}

// Cancel frees the slot. Canceling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id string) (model.Appointment, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	switch cur.Status {
	case model.StatusCanceled:
		return cur, nil
	case model.StatusCompleted:
		return model.Appointment{}, model.Invalid("status", "completed appointments cannot be canceled")
	}
	cur.Status = model.StatusCanceled
	cur.UpdatedAt = s.now().UTC()
	evt, err := appointmentEvent(cur, outbox.TopicAppointmentCancelled)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := s.appts.UpdateAppointment(ctx, cur, evt); err != nil {
		return model.Appointment{}, err
	}
	return cur, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	evt, err := appointmentEvent(cur, outbox.TopicAppointmentDeleted)
	if err != nil {
		return err
	}
	return s.appts.DeleteAppointment(ctx, cur.ID, evt)
}

// reserve runs the availability check and then write. A write that loses a
// race with a concurrent booking gets one more check-and-write round.
func (s *Service) reserve(ctx context.Context, appt model.Appointment, excludeID string, write func() error) error {
	for attempt := 1; ; attempt++ {
		ok, err := s.avail.IsSlotAvailableExcluding(ctx, appt.Start, appt.DurationMinutes, excludeID)
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !ok {
			if attempt > 1 {
				return &model.ConflictError{Message: "slot no longer available"}
			}
			return &model.ConflictError{Message: "this time slot is not available"}
		}

		err = write()
		var conflict *model.ConflictError
		if !errors.As(err, &conflict) {
			return err
		}
		if attempt > 1 {
			return &model.ConflictError{Message: "slot no longer available"}
		}
		s.logger.Warn("booking lost a race; retrying once",
			"appointment_id", appt.ID,
			"start", appt.Start.Format(time.RFC3339),
		)
	}
}

func (s *Service) lookupType(ctx context.Context, id string) (model.AppointmentType, error) {
	typ, err := s.types.GetAppointmentType(ctx, id)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			return model.AppointmentType{}, model.Invalid("appointmentTypeId", "unknown appointment type")
		}
		return model.AppointmentType{}, err
	}
	return typ, nil
}

type appointmentPayload struct {
	AppointmentID     string `json:"appointment_id"`
	UserID            string `json:"user_id"`
	AppointmentTypeID string `json:"appointment_type_id"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	DurationMinutes   int    `json:"duration_minutes"`
	Status            string `json:"status"`
}

func appointmentEvent(a model.Appointment, topic string) (outbox.Event, error) {
	return outbox.NewEvent("appointment", a.ID, topic, appointmentPayload{
		AppointmentID:     a.ID,
		UserID:            a.UserID,
		AppointmentTypeID: a.AppointmentTypeID,
		StartTime:         a.Start.UTC().Format(time.RFC3339),
		EndTime:           a.End().UTC().Format(time.RFC3339),
		DurationMinutes:   a.DurationMinutes,
		Status:            a.Status,
	})
}
