package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

func (s *Store) CreateAppointmentType(_ context.Context, t model.AppointmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTakenLocked(t.Name, "") {
		return &model.DuplicateError{Resource: "appointment type", Key: t.Name}
	}
	s.types[t.ID] = t
	return nil
}

func (s *Store) GetAppointmentType(_ context.Context, id string) (model.AppointmentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[id]
	if !ok {
		return model.AppointmentType{}, &model.NotFoundError{Resource: "appointment type", Key: id}
	}
	return t, nil
}

func (s *Store) ListAppointmentTypes(_ context.Context, f model.AppointmentTypeFilter) ([]model.AppointmentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.AppointmentType
	for _, t := range s.types {
		if f.NameContains != "" && !containsFold(t.Name, f.NameContains) {
			continue
		}
		if f.MinPrice != nil && t.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && t.Price > *f.MaxPrice {
			continue
		}
		if f.MinDuration != nil && t.DurationMinutes < *f.MinDuration {
			continue
		}
		if f.MaxDuration != nil && t.DurationMinutes > *f.MaxDuration {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) UpdateAppointmentType(_ context.Context, t model.AppointmentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[t.ID]; !ok {
		return &model.NotFoundError{Resource: "appointment type", Key: t.ID}
	}
	if s.nameTakenLocked(t.Name, t.ID) {
		return &model.DuplicateError{Resource: "appointment type", Key: t.Name}
	}
	s.types[t.ID] = t
	return nil
}

func (s *Store) DeleteAppointmentType(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[id]; !ok {
		return &model.NotFoundError{Resource: "appointment type", Key: id}
	}
	for _, a := range s.appts {
		if a.AppointmentTypeID == id {
			return &model.ConflictError{Message: "appointment type is in use"}
		}
	}
	delete(s.types, id)
	return nil
}

func (s *Store) nameTakenLocked(name, exceptID string) bool {
	for _, t := range s.types {
		if t.ID != exceptID && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}
