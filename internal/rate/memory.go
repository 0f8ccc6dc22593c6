package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: mismo fixed window que RedisLimiter pero por proceso.
// Sirve para una sola réplica o cuando cache.kind=memory.
type MemoryLimiter struct {
	c      *gocache.Cache
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, 2*window),
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	// Add falla si ya existe; en ese caso sólo incrementamos.
	_ = l.c.Add(k, int64(0), l.Window)
	hits, err := l.c.IncrementInt64(k, 1)
	if err != nil {
		return Result{}, err
	}

	ttl := winStart.Add(l.Window).Sub(now)
	return result(hits, l.Max, ttl, l.Window), nil
}
