package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

// Overrides groups the date-specific entries from a day onward.
type Overrides struct {
	SpecialHours []model.SpecialHours
	ClosedDays   []model.ClosedDay
}

func (s *Scheduler) WeeklySchedule(ctx context.Context) ([]model.WeeklyScheduleEntry, error) {
	return s.store.ListWeekly(ctx)
}

// UpcomingOverrides lists special hours and closed days from today onward.
func (s *Scheduler) UpcomingOverrides(ctx context.Context) (Overrides, error) {
	today := s.Today()
	special, err := s.store.ListSpecialHours(ctx, today, time.Time{})
	if err != nil {
		return Overrides{}, fmt.Errorf("list special hours: %w", err)
	}
	closed, err := s.store.ListClosedDays(ctx, today, time.Time{})
	if err != nil {
		return Overrides{}, fmt.Errorf("list closed days: %w", err)
	}
	return Overrides{SpecialHours: special, ClosedDays: closed}, nil
}

// SetWeeklySchedule replaces the hours of one weekday. Repeating a call is a no-op.
func (s *Scheduler) SetWeeklySchedule(ctx context.Context, dayOfWeek int, slots []model.TimeSlot) (model.WeeklyScheduleEntry, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return model.WeeklyScheduleEntry{}, model.Invalid("dayOfWeek", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	norm, err := normalizeSlots(slots)
	if err != nil {
		return model.WeeklyScheduleEntry{}, err
	}
	entry := model.WeeklyScheduleEntry{DayOfWeek: dayOfWeek, TimeSlots: norm, UpdatedAt: s.cfg.Now().UTC()}

	evt, err := outbox.NewEvent("schedule", fmt.Sprintf("weekly:%d", dayOfWeek), outbox.TopicScheduleChanged,
		outbox.ScheduleChanged{Kind: "weekly", Action: "upserted", DayOfWeek: &dayOfWeek})
	if err != nil {
		return model.WeeklyScheduleEntry{}, err
	}
	if err := s.store.UpsertWeekly(ctx, entry, evt); err != nil {
		return model.WeeklyScheduleEntry{}, fmt.Errorf("upsert weekly schedule: %w", err)
	}
	s.resolver.Invalidate()
	return entry, nil
}

func (s *Scheduler) AddSpecialHours(ctx context.Context, date time.Time, slots []model.TimeSlot, reason string) (model.SpecialHours, error) {
	day := timeofday.DateOf(date)
	if day.Before(s.Today()) {
		return model.SpecialHours{}, model.Invalid("date", "cannot add special hours for past dates")
	}
	norm, err := normalizeSlots(slots)
	if err != nil {
		return model.SpecialHours{}, err
	}
	sh := model.SpecialHours{
		ID:        uuid.NewString(),
		Date:      day,
		TimeSlots: norm,
		Reason:    strings.TrimSpace(reason),
		CreatedAt: s.cfg.Now().UTC(),
	}
	evt, err := s.overrideEvent("special_hours", "added", sh.ID, day)
	if err != nil {
		return model.SpecialHours{}, err
	}
	if err := s.store.CreateSpecialHours(ctx, sh, evt); err != nil {
		return model.SpecialHours{}, duplicateFor(err, "special hours", day)
	}
	return sh, nil
}

func (s *Scheduler) DeleteSpecialHours(ctx context.Context, date time.Time) error {
	day := timeofday.DateOf(date)
	evt, err := s.overrideEvent("special_hours", "deleted", timeofday.FormatDate(day), day)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSpecialHours(ctx, day, evt); err != nil {
		return fmt.Errorf("delete special hours: %w", err)
	}
	return nil
}

func (s *Scheduler) AddClosedDay(ctx context.Context, date time.Time, reason string) (model.ClosedDay, error) {
	day := timeofday.DateOf(date)
	if day.Before(s.Today()) {
		return model.ClosedDay{}, model.Invalid("date", "cannot add closed day for past dates")
	}
	cd := model.ClosedDay{
		ID:        uuid.NewString(),
		Date:      day,
		Reason:    strings.TrimSpace(reason),
		CreatedAt: s.cfg.Now().UTC(),
	}
	evt, err := s.overrideEvent("closed_day", "added", cd.ID, day)
	if err != nil {
		return model.ClosedDay{}, err
	}
	if err := s.store.CreateClosedDay(ctx, cd, evt); err != nil {
		return model.ClosedDay{}, duplicateFor(err, "closed day", day)
	}
	return cd, nil
}

func (s *Scheduler) DeleteClosedDay(ctx context.Context, date time.Time) error {
	day := timeofday.DateOf(date)
	evt, err := s.overrideEvent("closed_day", "deleted", timeofday.FormatDate(day), day)
	if err != nil {
		return err
	}
	if err := s.store.DeleteClosedDay(ctx, day, evt); err != nil {
		return fmt.Errorf("delete closed day: %w", err)
	}
	return nil
}

func (s *Scheduler) overrideEvent(kind, action, id string, day time.Time) (outbox.Event, error) {
	return outbox.NewEvent("schedule", id, outbox.TopicScheduleChanged,
		outbox.ScheduleChanged{Kind: kind, Action: action, Date: timeofday.FormatDate(day)})
}

// normalizeSlots validates each slot and rewrites it zero-padded ("9:00" -> "09:00").
func normalizeSlots(slots []model.TimeSlot) ([]model.TimeSlot, error) {
	out := make([]model.TimeSlot, 0, len(slots))
	for i, sl := range slots {
		if strings.TrimSpace(sl.From) == "" || strings.TrimSpace(sl.To) == "" {
			return nil, model.Invalid("timeSlots", "slot %d must have 'from' and 'to'", i)
		}
		from, to, err := timeofday.ParseSlot(sl.From, sl.To)
		if err != nil {
			switch {
			case errors.Is(err, timeofday.ErrFormat):
				return nil, model.Invalid("timeSlots", "slot %d: time must be in HH:MM format", i)
			default:
				return nil, model.Invalid("timeSlots", "slot %d: start time must be before end time", i)
			}
		}
		out = append(out, model.TimeSlot{From: timeofday.ToHHMM(from), To: timeofday.ToHHMM(to)})
	}
	return out, nil
}

// duplicateFor fills in the resource name when the store reports a bare duplicate.
func duplicateFor(err error, resource string, day time.Time) error {
	var dup *model.DuplicateError
	if errors.As(err, &dup) {
		return &model.DuplicateError{Resource: resource, Key: timeofday.FormatDate(day)}
	}
	return fmt.Errorf("create %s: %w", resource, err)
}
