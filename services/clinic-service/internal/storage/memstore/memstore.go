// Package memstore keeps the clinic data in process memory. It enforces the
// same uniqueness and no-overlap rules as the Postgres schema and records the
// outbox events each write would have produced.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

type Store struct {
	mu      sync.RWMutex
	weekly  map[int]model.WeeklyScheduleEntry
	special map[string]model.SpecialHours
	closed  map[string]model.ClosedDay
	appts   map[string]model.Appointment
	types   map[string]model.AppointmentType
	events  []outbox.Event
}

func New() *Store {
	return &Store{
		weekly:  make(map[int]model.WeeklyScheduleEntry),
		special: make(map[string]model.SpecialHours),
		closed:  make(map[string]model.ClosedDay),
		appts:   make(map[string]model.Appointment),
		types:   make(map[string]model.AppointmentType),
	}
}

// Events returns a copy of every outbox event written so far.
func (s *Store) Events() []outbox.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]outbox.Event(nil), s.events...)
}

func (s *Store) ListWeekly(_ context.Context) ([]model.WeeklyScheduleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.WeeklyScheduleEntry, 0, len(s.weekly))
	for _, e := range s.weekly {
		e.TimeSlots = append([]model.TimeSlot(nil), e.TimeSlots...)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (s *Store) UpsertWeekly(_ context.Context, entry model.WeeklyScheduleEntry, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.TimeSlots = append([]model.TimeSlot(nil), entry.TimeSlots...)
	s.weekly[entry.DayOfWeek] = entry
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) ListSpecialHours(_ context.Context, from, to time.Time) ([]model.SpecialHours, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.SpecialHours
	for _, sh := range s.special {
		if inRange(sh.Date, from, to) {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) CreateSpecialHours(_ context.Context, sh model.SpecialHours, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timeofday.FormatDate(sh.Date)
	if _, ok := s.special[key]; ok {
		return &model.DuplicateError{Resource: "special hours", Key: key}
	}
	s.special[key] = sh
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) DeleteSpecialHours(_ context.Context, day time.Time, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timeofday.FormatDate(day)
	if _, ok := s.special[key]; !ok {
		return &model.NotFoundError{Resource: "special hours", Key: key}
	}
	delete(s.special, key)
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) ListClosedDays(_ context.Context, from, to time.Time) ([]model.ClosedDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ClosedDay
	for _, cd := range s.closed {
		if inRange(cd.Date, from, to) {
			out = append(out, cd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) CreateClosedDay(_ context.Context, cd model.ClosedDay, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timeofday.FormatDate(cd.Date)
	if _, ok := s.closed[key]; ok {
		return &model.DuplicateError{Resource: "closed day", Key: key}
	}
	s.closed[key] = cd
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) DeleteClosedDay(_ context.Context, day time.Time, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timeofday.FormatDate(day)
	if _, ok := s.closed[key]; !ok {
		return &model.NotFoundError{Resource: "closed day", Key: key}
	}
	delete(s.closed, key)
	s.events = append(s.events, events...)
	return nil
}

// inRange compares calendar dates; a zero bound is open.
func inRange(day, from, to time.Time) bool {
	d := timeofday.FormatDate(day)
	if !from.IsZero() && d < timeofday.FormatDate(from) {
		return false
	}
	if !to.IsZero() && d > timeofday.FormatDate(to) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
