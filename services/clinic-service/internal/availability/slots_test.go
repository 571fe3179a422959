package availability

import (
	"testing"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

func hhmm(slots []int) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, timeofday.ToHHMM(s))
	}
	return out
}

func TestCandidateSlots_Granularity(t *testing.T) {
	slots := CandidateSlots([]Window{{From: 9 * 60, To: 10 * 60}}, 15)
	got := hhmm(slots)
	want := []string{"09:00", "09:15", "09:30", "09:45"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFreeSlots_Basic(t *testing.T) {
	windows := []Window{{From: 9 * 60, To: 10 * 60}}
	busy := []Interval{{Start: 9*60 + 15, End: 9*60 + 45}}

	free := FreeSlots(windows, 15, 15, busy)
	if len(free) != 2 {
		t.Fatalf("expected 2 slots, got %v", hhmm(free))
	}
	if free[0] != 9*60 || free[1] != 9*60+45 {
		t.Fatalf("expected 09:00 and 09:45, got %v", hhmm(free))
	}
}

func TestFreeSlots_DurationMustFitWindow(t *testing.T) {
	free := FreeSlots([]Window{{From: 9 * 60, To: 12 * 60}}, 30, 15, nil)
	if len(free) == 0 {
		t.Fatal("expected free slots")
	}
	if last := timeofday.ToHHMM(free[len(free)-1]); last != "11:30" {
		t.Fatalf("expected last slot 11:30, got %s", last)
	}
}

func TestFitsWithin_DoesNotSpanGap(t *testing.T) {
	windows := []Window{{From: 9 * 60, To: 12 * 60}, {From: 12 * 60, To: 14 * 60}}
	if FitsWithin(windows, 11*60+45, 12*60+15) {
		t.Fatal("range across two windows must not fit")
	}
	if !FitsWithin(windows, 12*60, 12*60+30) {
		t.Fatal("expected fit in second window")
	}
}

func TestAvailable_RejectsNonPositiveDuration(t *testing.T) {
	if Available([]Window{{From: 0, To: 60}}, 0, 0, nil) {
		t.Fatal("zero duration must not be available")
	}
}
