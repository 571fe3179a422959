package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

// TypeService manages the catalogue of appointment types.
type TypeService struct {
	store AppointmentTypeStore
	now   func() time.Time
}

func NewTypeService(store AppointmentTypeStore) *TypeService {
	return &TypeService{store: store, now: time.Now}
}

type TypeInput struct {
	Name            string
	DurationMinutes int
	Price           float64
	Description     string
}

type TypePatch struct {
	Name            *string
	DurationMinutes *int
	Price           *float64
	Description     *string
}

func (s *TypeService) Create(ctx context.Context, in TypeInput) (model.AppointmentType, error) {
	now := s.now().UTC()
	t := model.AppointmentType{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(in.Name),
		DurationMinutes: in.DurationMinutes,
		Price:           in.Price,
		Description:     strings.TrimSpace(in.Description),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateType(t); err != nil {
		return model.AppointmentType{}, err
	}
	if err := s.store.CreateAppointmentType(ctx, t); err != nil {
		return model.AppointmentType{}, err
	}
	return t, nil
}

func (s *TypeService) Get(ctx context.Context, id string) (model.AppointmentType, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.AppointmentType{}, model.Invalid("id", "is required")
	}
	return s.store.GetAppointmentType(ctx, id)
}

func (s *TypeService) Update(ctx context.Context, id string, p TypePatch) (model.AppointmentType, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return model.AppointmentType{}, err
	}
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.DurationMinutes != nil {
		t.DurationMinutes = *p.DurationMinutes
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if err := validateType(t); err != nil {
		return model.AppointmentType{}, err
	}
	t.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateAppointmentType(ctx, t); err != nil {
		return model.AppointmentType{}, err
	}
	return t, nil
}

func (s *TypeService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return model.Invalid("id", "is required")
	}
	return s.store.DeleteAppointmentType(ctx, strings.TrimSpace(id))
}

func (s *TypeService) List(ctx context.Context, nameContains string) ([]model.AppointmentType, error) {
	return s.store.ListAppointmentTypes(ctx, model.AppointmentTypeFilter{NameContains: strings.TrimSpace(nameContains)})
}

func (s *TypeService) ByPriceRange(ctx context.Context, min, max float64) ([]model.AppointmentType, error) {
	if min < 0 || max < 0 {
		return nil, model.Invalid("price", "price cannot be negative")
	}
	if min > max {
		return nil, model.Invalid("minPrice", "minimum price cannot be greater than maximum price")
	}
	return s.store.ListAppointmentTypes(ctx, model.AppointmentTypeFilter{MinPrice: &min, MaxPrice: &max})
}

func (s *TypeService) ByDurationRange(ctx context.Context, min, max int) ([]model.AppointmentType, error) {
	if min <= 0 || max <= 0 {
		return nil, model.Invalid("durationMinutes", "duration must be positive")
	}
	if min > max {
		return nil, model.Invalid("minDuration", "minimum duration cannot be greater than maximum duration")
	}
	return s.store.ListAppointmentTypes(ctx, model.AppointmentTypeFilter{MinDuration: &min, MaxDuration: &max})
}

func validateType(t model.AppointmentType) error {
	switch {
	case t.Name == "":
		return model.Invalid("name", "is required")
	case t.DurationMinutes <= 0:
		return model.Invalid("durationMinutes", "duration must be a positive number")
	case t.Price < 0:
		return model.Invalid("price", "price cannot be negative")
	}
	return nil
}
