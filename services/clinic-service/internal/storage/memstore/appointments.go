package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/outbox"
)

func (s *Store) FindAppointments(_ context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Appointment
	for _, a := range s.appts {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appts[id]
	if !ok {
		return model.Appointment{}, &model.NotFoundError{Resource: "appointment", Key: id}
	}
	return a, nil
}

// CreateAppointment re-checks overlap under the lock, like the exclusion constraint.
func (s *Store) CreateAppointment(_ context.Context, a model.Appointment, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[a.AppointmentTypeID]; !ok {
		return &model.NotFoundError{Resource: "appointment type", Key: a.AppointmentTypeID}
	}
	if s.overlapsLocked(a) {
		return &model.ConflictError{Message: "time slot already booked"}
	}
	s.appts[a.ID] = a
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) UpdateAppointment(_ context.Context, a model.Appointment, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appts[a.ID]; !ok {
		return &model.NotFoundError{Resource: "appointment", Key: a.ID}
	}
	if s.overlapsLocked(a) {
		return &model.ConflictError{Message: "time slot already booked"}
	}
	s.appts[a.ID] = a
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) DeleteAppointment(_ context.Context, id string, events ...outbox.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appts[id]; !ok {
		return &model.NotFoundError{Resource: "appointment", Key: id}
	}
	delete(s.appts, id)
	s.events = append(s.events, events...)
	return nil
}

func (s *Store) overlapsLocked(a model.Appointment) bool {
	if !model.Occupies(a.Status) {
		return false
	}
	for _, other := range s.appts {
		if other.ID == a.ID || !model.Occupies(other.Status) {
			continue
		}
		if a.Start.Before(other.End()) && other.Start.Before(a.End()) {
			return true
		}
	}
	return false
}

func matches(a model.Appointment, f model.AppointmentFilter) bool {
	if f.ExcludeID != "" && a.ID == f.ExcludeID {
		return false
	}
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if f.TypeID != "" && a.AppointmentTypeID != f.TypeID {
		return false
	}
	if !f.To.IsZero() && !a.Start.Before(f.To) {
		return false
	}
	if !f.From.IsZero() && !a.End().After(f.From) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if strings.EqualFold(st, a.Status) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
