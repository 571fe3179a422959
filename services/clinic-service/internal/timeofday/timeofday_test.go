package timeofday

import (
	"errors"
	"testing"
	"time"
)

func TestToMinutesRoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay; m += 7 {
		got, err := ToMinutes(ToHHMM(m))
		if err != nil {
			t.Fatalf("ToMinutes(%q) failed: %v", ToHHMM(m), err)
		}
		if got != m {
			t.Fatalf("round trip %d -> %s -> %d", m, ToHHMM(m), got)
		}
	}
}

func TestToMinutesRejectsBadInput(t *testing.T) {
	for _, in := range []string{"24:00", "9:5", "12:60", "noon", "", "-1:00"} {
		if _, err := ToMinutes(in); !errors.Is(err, ErrFormat) {
			t.Fatalf("expected ErrFormat for %q, got %v", in, err)
		}
	}
	if m, err := ToMinutes("9:05"); err != nil || m != 545 {
		t.Fatalf("expected single-digit hour to parse, got %d (%v)", m, err)
	}
}

func TestToHHMMWraps(t *testing.T) {
	if got := ToHHMM(1500); got != "01:00" {
		t.Fatalf("expected 01:00, got %s", got)
	}
	if got := ToHHMM(-30); got != "23:30" {
		t.Fatalf("expected 23:30, got %s", got)
	}
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	if Overlaps(540, 570, 570, 600) {
		t.Fatal("touching intervals must not overlap")
	}
	if !Overlaps(540, 571, 570, 600) {
		t.Fatal("expected overlap")
	}
}

func TestParseSlot(t *testing.T) {
	if _, _, err := ParseSlot("12:00", "09:00"); !errors.Is(err, ErrEmptySlot) {
		t.Fatalf("expected ErrEmptySlot, got %v", err)
	}
	f, to, err := ParseSlot("09:00", "12:00")
	if err != nil || f != 540 || to != 720 {
		t.Fatalf("unexpected parse %d-%d (%v)", f, to, err)
	}
}

func TestDayKeyAndMinuteOf(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 22:30 UTC on Jan 5 is 00:30 local on Jan 6.
	instant := time.Date(2026, 1, 5, 22, 30, 0, 0, time.UTC)
	day := DayKey(instant, loc)
	if FormatDate(day) != "2026-01-06" {
		t.Fatalf("unexpected day key %s", FormatDate(day))
	}
	if got := MinuteOf(instant, day, loc); got != 30 {
		t.Fatalf("expected minute 30, got %d", got)
	}
	prev := day.AddDate(0, 0, -1)
	if got := MinuteOf(instant, prev, loc); got != MinutesPerDay+30 {
		t.Fatalf("expected minute %d, got %d", MinutesPerDay+30, got)
	}
	if !At(day, 30, loc).Equal(instant) {
		t.Fatalf("At mismatch: %s", At(day, 30, loc))
	}
}

func TestOnMinute(t *testing.T) {
	if !OnMinute(time.Date(2030, 1, 7, 9, 30, 0, 0, time.UTC)) {
		t.Fatal("09:30:00 should be on a minute")
	}
	if OnMinute(time.Date(2030, 1, 7, 9, 30, 30, 0, time.UTC)) {
		t.Fatal("09:30:30 should not be on a minute")
	}
	if OnMinute(time.Date(2030, 1, 7, 9, 30, 0, 1, time.UTC)) {
		t.Fatal("sub-second starts should not be on a minute")
	}
}
