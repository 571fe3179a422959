package scheduling

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/availability"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/timeofday"
)

type Config struct {
	// Location is the clinic time zone; every HH:MM is wall-clock time there.
	Location *time.Location
	// DefaultDurationMinutes decides whether a day is fully booked.
	DefaultDurationMinutes int
	GranularityMinutes     int
	WeeklyCacheTTL         time.Duration
	// MonthWorkers bounds the per-day fan-out of month scans.
	MonthWorkers int
	Now          func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.DefaultDurationMinutes <= 0 {
		c.DefaultDurationMinutes = 30
	}
	if c.GranularityMinutes <= 0 {
		c.GranularityMinutes = 15
	}
	if c.MonthWorkers <= 0 {
		c.MonthWorkers = 8
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Scheduler combines resolved opening hours with bookings.
type Scheduler struct {
	store    ScheduleStore
	appts    AppointmentReader
	resolver *Resolver
	cfg      Config
}

func New(store ScheduleStore, appts AppointmentReader, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		store:    store,
		appts:    appts,
		resolver: NewResolver(store, cfg.WeeklyCacheTTL),
		cfg:      cfg,
	}
}

func (s *Scheduler) Location() *time.Location { return s.cfg.Location }

func (s *Scheduler) DefaultDuration() int { return s.cfg.DefaultDurationMinutes }

func (s *Scheduler) Resolver() *Resolver { return s.resolver }

// Today is the current day key in the clinic location.
func (s *Scheduler) Today() time.Time {
	return timeofday.DayKey(s.cfg.Now(), s.cfg.Location)
}

func (s *Scheduler) WindowsFor(ctx context.Context, date time.Time) ([]availability.Window, error) {
	return s.resolver.WindowsFor(ctx, date)
}

func (s *Scheduler) Day(ctx context.Context, date time.Time) (DayConfig, error) {
	return s.resolver.Day(ctx, date)
}

// IsSlotAvailable reports whether an appointment of durationMinutes can start at start.
func (s *Scheduler) IsSlotAvailable(ctx context.Context, start time.Time, durationMinutes int) (bool, error) {
	return s.IsSlotAvailableExcluding(ctx, start, durationMinutes, "")
}

// IsSlotAvailableExcluding ignores the appointment with excludeID, for rescheduling.
func (s *Scheduler) IsSlotAvailableExcluding(ctx context.Context, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	if durationMinutes <= 0 {
		return false, model.Invalid("durationMinutes", "must be a positive number of minutes")
	}
	if !timeofday.OnMinute(start) {
		return false, model.Invalid("start", "must be on a whole minute")
	}
	loc := s.cfg.Location
	day := timeofday.DayKey(start, loc)

	dc, err := s.resolver.Day(ctx, day)
	if err != nil {
		return false, err
	}
	startMin := timeofday.MinuteOf(start, day, loc)
	if !availability.FitsWithin(dc.Windows, startMin, startMin+durationMinutes) {
		return false, nil
	}

	busy, err := s.busyOn(ctx, day, excludeID)
	if err != nil {
		return false, err
	}
	return availability.Available(dc.Windows, startMin, durationMinutes, busy), nil
}

// CandidateSlots lists every slot start of a date at the configured granularity.
func (s *Scheduler) CandidateSlots(ctx context.Context, date time.Time) ([]string, error) {
	dc, err := s.resolver.Day(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.CandidateSlotsOf(dc), nil
}

// CandidateSlotsOf is CandidateSlots for an already resolved day.
func (s *Scheduler) CandidateSlotsOf(dc DayConfig) []string {
	return formatSlots(availability.CandidateSlots(dc.Windows, s.cfg.GranularityMinutes))
}

// FreeSlots lists the slot starts of a date where durationMinutes is bookable.
func (s *Scheduler) FreeSlots(ctx context.Context, date time.Time, durationMinutes int) ([]string, error) {
	if durationMinutes <= 0 {
		return nil, model.Invalid("durationMinutes", "must be a positive number of minutes")
	}
	day := timeofday.DateOf(date)
	dc, err := s.resolver.Day(ctx, day)
	if err != nil {
		return nil, err
	}
	if dc.Closed() {
		return []string{}, nil
	}
	busy, err := s.busyOn(ctx, day, "")
	if err != nil {
		return nil, err
	}
	return formatSlots(availability.FreeSlots(dc.Windows, durationMinutes, s.cfg.GranularityMinutes, busy)), nil
}

func (s *Scheduler) IsFullyBooked(ctx context.Context, date time.Time) (bool, error) {
	free, err := s.FreeSlots(ctx, date, s.cfg.DefaultDurationMinutes)
	if err != nil {
		return false, err
	}
	return len(free) == 0, nil
}

// FullyBookedDaysInMonth returns the day numbers (ascending) without a free
// default-duration slot. The month's schedule and bookings are fetched once.
func (s *Scheduler) FullyBookedDaysInMonth(ctx context.Context, month time.Month, year int) ([]int, error) {
	first, err := monthStart(month, year)
	if err != nil {
		return nil, err
	}
	days := daysIn(first)
	last := first.AddDate(0, 0, days-1)

	cal, buckets, err := s.loadRange(ctx, first, last)
	if err != nil {
		return nil, err
	}

	booked := make([]bool, days)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MonthWorkers)
	for i := 0; i < days; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			day := first.AddDate(0, 0, i)
			dc := cal.Day(day)
			busy := s.busyFrom(buckets[timeofday.FormatDate(day)], day, "")
			booked[i] = len(availability.FreeSlots(dc.Windows, s.cfg.DefaultDurationMinutes, s.cfg.GranularityMinutes, busy)) == 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []int{}
	for i, full := range booked {
		if full {
			out = append(out, i+1)
		}
	}
	return out, nil
}

// MonthOverview resolves the opening hours of every day in the month.
func (s *Scheduler) MonthOverview(ctx context.Context, month time.Month, year int) ([]DayConfig, error) {
	first, err := monthStart(month, year)
	if err != nil {
		return nil, err
	}
	days := daysIn(first)
	cal, err := s.resolver.Load(ctx, first, first.AddDate(0, 0, days-1))
	if err != nil {
		return nil, err
	}
	out := make([]DayConfig, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, cal.Day(first.AddDate(0, 0, i)))
	}
	return out, nil
}

// busyOn loads the occupying appointments touching day.
func (s *Scheduler) busyOn(ctx context.Context, day time.Time, excludeID string) ([]availability.Interval, error) {
	loc := s.cfg.Location
	appts, err := s.appts.FindAppointments(ctx, model.AppointmentFilter{
		From:      timeofday.At(day, 0, loc),
		To:        timeofday.At(day.AddDate(0, 0, 1), 0, loc),
		Statuses:  model.OccupyingStatuses,
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	return s.busyFrom(appts, day, excludeID), nil
}

// busyFrom converts appointments to minute intervals relative to day, each
// sized by its own persisted duration.
func (s *Scheduler) busyFrom(appts []model.Appointment, day time.Time, excludeID string) []availability.Interval {
	out := make([]availability.Interval, 0, len(appts))
	for _, a := range appts {
		if !model.Occupies(a.Status) || (excludeID != "" && a.ID == excludeID) {
			continue
		}
		start := timeofday.MinuteOf(a.Start, day, s.cfg.Location)
		end := start + a.DurationMinutes
		if !timeofday.OnMinute(a.Start) {
			// rows written elsewhere may carry seconds; round the end up
			end++
		}
		out = append(out, availability.Interval{Start: start, End: end})
	}
	return out
}

// loadRange fetches the calendar and the occupying appointments of [first, last]
// and buckets appointments under every day key they touch.
func (s *Scheduler) loadRange(ctx context.Context, first, last time.Time) (*Calendar, map[string][]model.Appointment, error) {
	loc := s.cfg.Location
	var (
		cal   *Calendar
		appts []model.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cal, err = s.resolver.Load(gctx, first, last)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = s.appts.FindAppointments(gctx, model.AppointmentFilter{
			From:     timeofday.At(first, 0, loc),
			To:       timeofday.At(last.AddDate(0, 0, 1), 0, loc),
			Statuses: model.OccupyingStatuses,
		})
		if err != nil {
			return fmt.Errorf("load appointments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	buckets := make(map[string][]model.Appointment)
	for _, a := range appts {
		startDay := timeofday.DayKey(a.Start, loc)
		endDay := timeofday.DayKey(a.End().Add(-time.Nanosecond), loc)
		for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
			key := timeofday.FormatDate(d)
			buckets[key] = append(buckets[key], a)
		}
	}
	return cal, buckets, nil
}

func monthStart(month time.Month, year int) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, model.Invalid("month", "must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return time.Time{}, model.Invalid("year", "must be between 2000 and 2100")
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}

func daysIn(first time.Time) int {
	return first.AddDate(0, 1, -1).Day()
}

func formatSlots(mins []int) []string {
	out := make([]string, 0, len(mins))
	for _, m := range mins {
		out = append(out, timeofday.ToHHMM(m))
	}
	return out
}
