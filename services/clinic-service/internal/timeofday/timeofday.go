// Package timeofday converts between "HH:MM" wall-clock strings, minutes past
// midnight and calendar day keys in the clinic time zone.
package timeofday

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MinutesPerDay = 24 * 60
	DateLayout    = "2006-01-02"
)

var (
	ErrFormat    = errors.New("time must be HH:MM in 24-hour format")
	ErrEmptySlot = errors.New("slot start must be before its end")
)

var hhmm = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

func ToMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !hhmm.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	h, m, _ := strings.Cut(s, ":")
	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)
	return hours*60 + mins, nil
}

// ToHHMM formats minutes past midnight, wrapping values outside one day.
func ToHHMM(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// ParseSlot converts a from/to pair and requires from < to.
func ParseSlot(from, to string) (int, int, error) {
	f, err := ToMinutes(from)
	if err != nil {
		return 0, 0, err
	}
	t, err := ToMinutes(to)
	if err != nil {
		return 0, 0, err
	}
	if f >= t {
		return 0, 0, fmt.Errorf("%w: %s-%s", ErrEmptySlot, from, to)
	}
	return f, t, nil
}

// DayKey returns the calendar date of t in loc as midnight UTC.
func DayKey(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf keeps the calendar date t carries in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD day key.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func FormatDate(day time.Time) string {
	return day.Format(DateLayout)
}

// At returns the instant at minutes past midnight on day (a day key) in loc.
func At(day time.Time, minutes int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minutes, 0, 0, loc)
}

// MinuteOf returns the wall-clock minute of t relative to midnight of day in loc.
// Instants on other days fall outside [0, MinutesPerDay).
func MinuteOf(t time.Time, day time.Time, loc *time.Location) int {
	local := t.In(loc)
	days := int(DayKey(t, loc).Sub(day).Hours() / 24)
	return days*MinutesPerDay + local.Hour()*60 + local.Minute()
}

// OnMinute reports whether t has no seconds or sub-second part.
func OnMinute(t time.Time) bool {
	return t.Second() == 0 && t.Nanosecond() == 0
}
