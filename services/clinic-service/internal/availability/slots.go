package availability

import (
	"sort"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

// Window is an open range of the clinic day, in minutes past midnight, half-open.
type Window struct {
	From int
	To   int
}

// Interval is an occupied range in minutes relative to the same midnight as the windows.
type Interval struct {
	Start int
	End   int
}

// SortWindows orders windows by start without merging them.
func SortWindows(ws []Window) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].From == ws[j].From {
			return ws[i].To < ws[j].To
		}
		return ws[i].From < ws[j].From
	})
}

// CandidateSlots returns every from+k*step inside each window, ascending.
func CandidateSlots(windows []Window, step int) []int {
	if step <= 0 {
		return nil
	}
	var slots []int
	for _, w := range windows {
		for t := w.From; t < w.To; t += step {
			slots = append(slots, t)
		}
	}
	sort.Ints(slots)
	return dedupe(slots)
}

// FitsWithin reports whether [start,end) lies entirely inside a single window.
// A range spanning the gap between two windows does not fit.
func FitsWithin(windows []Window, start, end int) bool {
	if end <= start {
		return false
	}
	for _, w := range windows {
		if start >= w.From && end <= w.To {
			return true
		}
	}
	return false
}

func OverlapsAny(start, end int, busy []Interval) bool {
	for _, b := range busy {
		if timeofday.Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// Available is the booking predicate: the range fits one window and hits no busy interval.
func Available(windows []Window, start, duration int, busy []Interval) bool {
	if duration <= 0 {
		return false
	}
	end := start + duration
	return FitsWithin(windows, start, end) && !OverlapsAny(start, end, busy)
}

// FreeSlots filters the candidate starts by the booking predicate.
func FreeSlots(windows []Window, duration, step int, busy []Interval) []int {
	var free []int
	for _, c := range CandidateSlots(windows, step) {
		if Available(windows, c, duration, busy) {
			free = append(free, c)
		}
	}
	return free
}

func dedupe(sorted []int) []int {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
