package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

func TestTranslate(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	var dup *model.DuplicateError
	if err := translate(wrap(codeUniqueViolation), "closed day", "2030-01-07"); !errors.As(err, &dup) || dup.Key != "2030-01-07" {
		t.Fatalf("expected DuplicateError, got %v", err)
	}
	var conflict *model.ConflictError
	if err := translate(wrap(codeExclusionViolation), "appointment", "a1"); !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	var nf *model.NotFoundError
	if err := translate(pgx.ErrNoRows, "appointment", "a1"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := translate(wrap(codeInvalidText), "appointment", "not-a-uuid"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for malformed id, got %v", err)
	}
	other := errors.New("boom")
	if err := translate(other, "appointment", "a1"); err != other {
		t.Fatalf("expected passthrough, got %v", err)
	}
	if translate(nil, "x", "y") != nil {
		t.Fatal("expected nil")
	}
}

func TestSlotsCodec(t *testing.T) {
	raw, err := encodeSlots(nil)
	if err != nil || string(raw) != "[]" {
		t.Fatalf("expected empty json array, got %s (%v)", raw, err)
	}
	slots, err := decodeSlots([]byte(`[{"from":"09:00","to":"12:00"}]`))
	if err != nil || len(slots) != 1 || slots[0].To != "12:00" {
		t.Fatalf("unexpected decode %+v (%v)", slots, err)
	}
}
