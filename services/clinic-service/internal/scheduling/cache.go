package scheduling

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

// weeklyCache holds the weekly schedule for ttl. Concurrent misses share one load.
type weeklyCache struct {
	ttl  time.Duration
	now  func() time.Time
	load func(context.Context) ([]model.WeeklyScheduleEntry, error)

	mu       sync.RWMutex
	entries  []model.WeeklyScheduleEntry
	loadedAt time.Time
	valid    bool
	gen      uint64

	group singleflight.Group
}

func (c *weeklyCache) get(ctx context.Context) ([]model.WeeklyScheduleEntry, error) {
	if c.ttl <= 0 {
		return c.load(ctx)
	}
	c.mu.RLock()
	if c.valid && c.now().Sub(c.loadedAt) < c.ttl {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	// Keyed by generation so callers after an invalidation never join an older load.
	ch := c.group.DoChan("weekly:"+strconv.FormatUint(gen, 10), func() (any, error) {
		entries, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries = entries
			c.loadedAt = c.now()
			c.valid = true
		}
		c.mu.Unlock()
		return entries, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.WeeklyScheduleEntry), nil
	}
}

func (c *weeklyCache) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.entries = nil
	c.gen++
	c.mu.Unlock()
}
