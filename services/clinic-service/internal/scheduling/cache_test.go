package scheduling

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

func TestWeeklyCacheTTL(t *testing.T) {
	loads := 0
	clock := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &weeklyCache{
		ttl: time.Minute,
		now: func() time.Time { return clock },
		load: func(context.Context) ([]model.WeeklyScheduleEntry, error) {
			loads++
			return []model.WeeklyScheduleEntry{{DayOfWeek: 1}}, nil
		},
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.get(ctx); err != nil {
			t.Fatalf("get failed: %v", err)
		}
	}
	if loads != 1 {
		t.Fatalf("expected 1 load within ttl, got %d", loads)
	}

	clock = clock.Add(2 * time.Minute)
	_, _ = c.get(ctx)
	if loads != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", loads)
	}

	c.invalidate()
	_, _ = c.get(ctx)
	if loads != 3 {
		t.Fatalf("expected reload after invalidate, got %d loads", loads)
	}
}

func TestWeeklyCacheInvalidateDuringLoad(t *testing.T) {
	var loads atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	c := &weeklyCache{
		ttl: time.Minute,
		now: time.Now,
		load: func(context.Context) ([]model.WeeklyScheduleEntry, error) {
			n := loads.Add(1)
			started <- struct{}{}
			if n == 1 {
				<-release
				return []model.WeeklyScheduleEntry{{DayOfWeek: 1}}, nil
			}
			return []model.WeeklyScheduleEntry{{DayOfWeek: 2}}, nil
		},
	}
	ctx := context.Background()

	stale := make(chan []model.WeeklyScheduleEntry, 1)
	go func() {
		entries, _ := c.get(ctx)
		stale <- entries
	}()
	<-started
	c.invalidate()

	got, err := c.get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got) != 1 || got[0].DayOfWeek != 2 {
		t.Fatalf("expected entries loaded after invalidate, got %+v", got)
	}
	close(release)
	<-stale

	got, _ = c.get(ctx)
	if len(got) != 1 || got[0].DayOfWeek != 2 {
		t.Fatalf("older load overwrote the cache: %+v", got)
	}
	if n := loads.Load(); n != 2 {
		t.Fatalf("expected 2 loads, got %d", n)
	}
}

func TestWeeklyCacheWaiterHonoursOwnContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	c := &weeklyCache{
		ttl: time.Minute,
		now: time.Now,
		load: func(context.Context) ([]model.WeeklyScheduleEntry, error) {
			close(started)
			<-release
			return nil, nil
		},
	}
	go func() { _, _ = c.get(context.Background()) }()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.get(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
