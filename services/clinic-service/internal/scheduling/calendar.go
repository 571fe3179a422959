package scheduling

import (
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/availability"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

// Source names which configuration decided a day's hours.
type Source string

const (
	SourceClosed  Source = "closed"
	SourceSpecial Source = "special"
	SourceWeekly  Source = "weekly"
	SourceNone    Source = "none"
)

// DayConfig is the resolved opening hours of one date.
type DayConfig struct {
	Date      time.Time
	Source    Source
	TimeSlots []model.TimeSlot
	Windows   []availability.Window
	Reason    string
}

func (d DayConfig) Closed() bool {
	return len(d.Windows) == 0
}

// Calendar is a snapshot of the schedule for a range of dates, loaded once and
// evaluated in memory.
type Calendar struct {
	weekly  map[int][]model.TimeSlot
	special map[string]model.SpecialHours
	closed  map[string]model.ClosedDay
}

func newCalendar(weekly []model.WeeklyScheduleEntry, special []model.SpecialHours, closed []model.ClosedDay) *Calendar {
	c := &Calendar{
		weekly:  make(map[int][]model.TimeSlot, len(weekly)),
		special: make(map[string]model.SpecialHours, len(special)),
		closed:  make(map[string]model.ClosedDay, len(closed)),
	}
	for _, w := range weekly {
		c.weekly[w.DayOfWeek] = w.TimeSlots
	}
	for _, sh := range special {
		c.special[timeofday.FormatDate(sh.Date)] = sh
	}
	for _, cd := range closed {
		c.closed[timeofday.FormatDate(cd.Date)] = cd
	}
	return c
}

// Day resolves a day key: closed beats special hours, special hours beat the weekly entry.
func (c *Calendar) Day(day time.Time) DayConfig {
	key := timeofday.FormatDate(day)
	if cd, ok := c.closed[key]; ok {
		return DayConfig{Date: day, Source: SourceClosed, Reason: cd.Reason}
	}
	if sh, ok := c.special[key]; ok {
		return DayConfig{
			Date:      day,
			Source:    SourceSpecial,
			TimeSlots: sh.TimeSlots,
			Windows:   windowsFromSlots(sh.TimeSlots),
			Reason:    sh.Reason,
		}
	}
	if slots, ok := c.weekly[int(day.Weekday())]; ok {
		return DayConfig{Date: day, Source: SourceWeekly, TimeSlots: slots, Windows: windowsFromSlots(slots)}
	}
	return DayConfig{Date: day, Source: SourceNone}
}

// windowsFromSlots skips malformed stored slots instead of failing the whole day.
func windowsFromSlots(slots []model.TimeSlot) []availability.Window {
	out := make([]availability.Window, 0, len(slots))
	for _, s := range slots {
		from, to, err := timeofday.ParseSlot(s.From, s.To)
		if err != nil {
			continue
		}
		out = append(out, availability.Window{From: from, To: to})
	}
	availability.SortWindows(out)
	return out
}
