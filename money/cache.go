package money

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Snapshot is the rate table of one calendar day.
type Snapshot struct {
	Date  time.Time
	Rates Rates
}

// Source fetches the rate table published for a date.
type Source interface {
	Fetch(ctx context.Context, date time.Time) (Rates, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, date time.Time) (Rates, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, date time.Time) (Rates, error) {
	return f(ctx, date)
}

// maxDays bounds the number of days a Cache holds.
const maxDays = 32

// Cache keeps the snapshots of recently requested days. Snapshots are never
// mutated; once maxDays are held the oldest inserted day is evicted.
//
// Concurrent callers asking for a day that is not cached yet share one fetch.
type Cache struct {
	src Source
	now func() time.Time

	mu    sync.RWMutex
	days  map[time.Time]*Snapshot
	order []time.Time

	group singleflight.Group
}

// NewCache returns an empty cache backed by src.
func NewCache(src Source) *Cache {
	return &Cache{
		src:  src,
		now:  time.Now,
		days: make(map[time.Time]*Snapshot),
	}
}

// GetOrFetch returns the snapshot for the calendar day of date, or of today
// when date is zero.
func (c *Cache) GetOrFetch(ctx context.Context, date time.Time) (*Snapshot, error) {
	if date.IsZero() {
		date = c.now()
	}
	day := truncate(date)
	if s := c.lookup(day); s != nil {
		return s, nil
	}

	v, err, _ := c.group.Do(day.Format("2006-01-02"), func() (interface{}, error) {
		if s := c.lookup(day); s != nil {
			return s, nil
		}
		rates, err := c.src.Fetch(ctx, day)
		if err != nil {
			return nil, err
		}
		s := &Snapshot{Date: day, Rates: rates}
		c.store(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (c *Cache) lookup(day time.Time) *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.days[day]
}

func (c *Cache) store(s *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.days[s.Date]; ok {
		return
	}
	if len(c.order) >= maxDays {
		delete(c.days, c.order[0])
		c.order = c.order[1:]
	}
	c.days[s.Date] = s
	c.order = append(c.order, s.Date)
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
