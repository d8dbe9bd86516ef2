package appointments

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"citavista/backend/internal/domain"
)

type cacheEntry struct {
	appointments []domain.Appointment
	capturedAt   time.Time
}

// monthCache keeps recently fetched months. Callers serialize access.
type monthCache struct {
	ttl     time.Duration
	now     func() time.Time
	entries *lru.Cache[domain.MonthKey, *cacheEntry]
}

func newMonthCache(size int, ttl time.Duration, now func() time.Time) (*monthCache, error) {
	entries, err := lru.New[domain.MonthKey, *cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &monthCache{ttl: ttl, now: now, entries: entries}, nil
}

// get returns a copy of the cached month when it is younger than the TTL.
func (c *monthCache) get(key domain.MonthKey) ([]domain.Appointment, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.capturedAt) >= c.ttl {
		c.entries.Remove(key)
		return nil, false
	}
	return cloneAppointments(e.appointments), true
}

func (c *monthCache) put(key domain.MonthKey, appts []domain.Appointment) {
	c.entries.Add(key, &cacheEntry{
		appointments: cloneAppointments(appts),
		capturedAt:   c.now(),
	})
}

// updateStatus rewrites id's status in every cached month without touching
// capture times.
func (c *monthCache) updateStatus(id string, status domain.Status) {
	for _, key := range c.entries.Keys() {
		if e, ok := c.entries.Peek(key); ok {
			setStatus(e.appointments, id, status)
		}
	}
}

func (c *monthCache) purge() {
	c.entries.Purge()
}

func (c *monthCache) len() int {
	return c.entries.Len()
}
