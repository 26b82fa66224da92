// Package quota enforces the per-user daily delivery cap.
package quota

import (
	"context"
	"sync"
	"time"
)

// Counter tracks deliveries per user and day. Reserve must be atomic: the
// used count never exceeds limit no matter how many callers race.
type Counter interface {
	// Reserve grants up to n deliveries without crossing limit and returns how
	// many were granted.
	Reserve(ctx context.Context, userID string, day time.Time, limit, n int) (int, error)
	// Used returns the deliveries already granted for the day.
	Used(ctx context.Context, userID string, day time.Time) (int, error)
}

// DayKey formats the calendar day of t in its own location.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

type counterKey struct {
	user string
	day  string
}

// MemoryCounter is a mutex-guarded Counter for a single process.
type MemoryCounter struct {
	mu   sync.Mutex
	used map[counterKey]int
}

var _ Counter = (*MemoryCounter)(nil)

// NewMemoryCounter creates an empty counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{used: make(map[counterKey]int)}
}

func (c *MemoryCounter) Reserve(ctx context.Context, userID string, day time.Time, limit, n int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, nil
	}
	k := counterKey{userID, DayKey(day)}
	c.mu.Lock()
	defer c.mu.Unlock()
	granted := min(n, max(0, limit-c.used[k]))
	c.used[k] += granted
	return granted, nil
}

func (c *MemoryCounter) Used(ctx context.Context, userID string, day time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used[counterKey{userID, DayKey(day)}], nil
}
