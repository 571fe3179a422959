package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("add special hours: %w", &DuplicateError{Resource: "special hours", Key: "2026-03-02"})
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	if dup.Key != "2026-03-02" {
		t.Fatalf("unexpected key %q", dup.Key)
	}

	var v *ValidationError
	if !errors.As(Invalid("durationMinutes", "must be positive"), &v) || v.Field != "durationMinutes" {
		t.Fatal("expected ValidationError on durationMinutes")
	}
}

func TestAppointmentEndUsesPersistedDuration(t *testing.T) {
	a := Appointment{DurationMinutes: 45}
	if got := a.End().Sub(a.Start); got.Minutes() != 45 {
		t.Fatalf("expected 45m, got %s", got)
	}
	if !Occupies(StatusConfirmed) || Occupies(StatusCanceled) {
		t.Fatal("unexpected occupancy")
	}
}
