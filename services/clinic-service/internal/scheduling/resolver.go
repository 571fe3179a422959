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

// Resolver answers "what are the opening hours of this date".
type Resolver struct {
	store  ScheduleStore
	weekly *weeklyCache
}

func NewResolver(store ScheduleStore, weeklyTTL time.Duration) *Resolver {
	return &Resolver{
		store: store,
		weekly: &weeklyCache{
			ttl:  weeklyTTL,
			now:  time.Now,
			load: store.ListWeekly,
		},
	}
}

// Load fetches everything needed to resolve the day keys in [from, to].
func (r *Resolver) Load(ctx context.Context, from, to time.Time) (*Calendar, error) {
	var (
		weekly  []model.WeeklyScheduleEntry
		special []model.SpecialHours
		closed  []model.ClosedDay
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weekly, err = r.weekly.get(gctx)
		if err != nil {
			return fmt.Errorf("load weekly schedule: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		special, err = r.store.ListSpecialHours(gctx, from, to)
		if err != nil {
			return fmt.Errorf("load special hours: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		closed, err = r.store.ListClosedDays(gctx, from, to)
		if err != nil {
			return fmt.Errorf("load closed days: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newCalendar(weekly, special, closed), nil
}

func (r *Resolver) Day(ctx context.Context, date time.Time) (DayConfig, error) {
	day := timeofday.DateOf(date)
	cal, err := r.Load(ctx, day, day)
	if err != nil {
		return DayConfig{}, err
	}
	return cal.Day(day), nil
}

// WindowsFor returns the open windows of a date, ordered by start.
func (r *Resolver) WindowsFor(ctx context.Context, date time.Time) ([]availability.Window, error) {
	dc, err := r.Day(ctx, date)
	if err != nil {
		return nil, err
	}
	return dc.Windows, nil
}

// IsClosed is true when the date has no open window, for whatever reason.
func (r *Resolver) IsClosed(ctx context.Context, date time.Time) (bool, error) {
	dc, err := r.Day(ctx, date)
	if err != nil {
		return false, err
	}
	return dc.Closed(), nil
}

// Invalidate drops the cached weekly schedule.
func (r *Resolver) Invalidate() {
	r.weekly.invalidate()
}
