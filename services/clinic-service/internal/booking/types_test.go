package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/storage/memstore"
)

func TestTypeServiceValidation(t *testing.T) {
	svc := NewTypeService(memstore.New())
	ctx := context.Background()
	var v *model.ValidationError
	if _, err := svc.Create(ctx, TypeInput{Name: "", DurationMinutes: 30}); !errors.As(err, &v) || v.Field != "name" {
		t.Fatalf("expected ValidationError on name, got %v", err)
	}
	if _, err := svc.Create(ctx, TypeInput{Name: "Peel", DurationMinutes: 0}); !errors.As(err, &v) || v.Field != "durationMinutes" {
		t.Fatalf("expected ValidationError on durationMinutes, got %v", err)
	}
	if _, err := svc.Create(ctx, TypeInput{Name: "Peel", DurationMinutes: 30, Price: -1}); !errors.As(err, &v) || v.Field != "price" {
		t.Fatalf("expected ValidationError on price, got %v", err)
	}
	if _, err := svc.Create(ctx, TypeInput{Name: "Peel", DurationMinutes: 30, Price: 0}); err != nil {
		t.Fatalf("free type must be allowed: %v", err)
	}
	var dup *model.DuplicateError
	if _, err := svc.Create(ctx, TypeInput{Name: "peel", DurationMinutes: 30}); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
}

func TestTypeRanges(t *testing.T) {
	svc := NewTypeService(memstore.New())
	ctx := context.Background()
	for _, in := range []TypeInput{
		{Name: "Consult", DurationMinutes: 15, Price: 50},
		{Name: "Facial", DurationMinutes: 60, Price: 250},
		{Name: "Peel", DurationMinutes: 45, Price: 400},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}
	byPrice, err := svc.ByPriceRange(ctx, 100, 300)
	if err != nil || len(byPrice) != 1 || byPrice[0].Name != "Facial" {
		t.Fatalf("unexpected price range result %+v (%v)", byPrice, err)
	}
	byDuration, err := svc.ByDurationRange(ctx, 30, 60)
	if err != nil || len(byDuration) != 2 {
		t.Fatalf("unexpected duration range result %+v (%v)", byDuration, err)
	}
	var v *model.ValidationError
	if _, err := svc.ByPriceRange(ctx, 300, 100); !errors.As(err, &v) {
		t.Fatalf("expected ValidationError for inverted range, got %v", err)
	}
	named, err := svc.List(ctx, "ACI")
	if err != nil || len(named) != 1 || named[0].Name != "Facial" {
		t.Fatalf("unexpected name search %+v (%v)", named, err)
	}
}

func TestDeleteTypeInUse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.svc.Book(ctx, BookRequest{UserID: "u1", AppointmentTypeID: f.typ.ID, Start: at(9, 0)}); err != nil {
		t.Fatalf("Book failed: %v", err)
	}
	var conflict *model.ConflictError
	if err := NewTypeService(f.store).Delete(ctx, f.typ.ID); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}
