package ratelimit

import (
	"context"
	"sync"
	"time"

	"quizgate/internal/domain/model"
	"quizgate/internal/infra/store"

	"github.com/rs/zerolog"
)

// MemoryLimiter keeps fixed-window counters in memory and snapshots them
// to ratelimit.json so caps survive a restart. Window semantics follow the
// counter contract: a denied attempt once the window is saturated does not
// increment further, so the count never exceeds the configured max.
type MemoryLimiter struct {
	mu       sync.Mutex
	counters map[string]*model.RateLimitCounter
	store    *store.Store
	log      *zerolog.Logger
	now      func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(st *store.Store, logger *zerolog.Logger) *MemoryLimiter {
	return &MemoryLimiter{
		counters: st.LoadRateLimits(),
		store:    st,
		log:      logger,
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().Unix()
	c, ok := m.counters[key]
	if !ok {
		c = &model.RateLimitCounter{Reset: now + int64(window.Seconds())}
		m.counters[key] = c
	}
	if now >= c.Reset {
		c.Count = 0
		c.Reset = now + int64(window.Seconds())
	}
	if c.Count >= max {
		return false, nil
	}
	c.Count++
	m.persistLocked()
	return true, nil
}

func (m *MemoryLimiter) RetryAfter(_ context.Context, key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[key]
	if !ok {
		return 0
	}
	remain := c.Reset - m.now().Unix()
	if remain <= 0 {
		return 0
	}
	return time.Duration(remain) * time.Second
}

// Sweep drops expired counters periodically until ctx is cancelled.
func (m *MemoryLimiter) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			m.pruneLocked()
			m.persistLocked()
			m.mu.Unlock()
		}
	}
}

func (m *MemoryLimiter) pruneLocked() {
	now := m.now().Unix()
	for key, c := range m.counters {
		if now >= c.Reset {
			delete(m.counters, key)
		}
	}
}

// persistLocked snapshots the counters. Persistence is best-effort: a
// failed write never fails the admission decision.
func (m *MemoryLimiter) persistLocked() {
	m.pruneLocked()
	if err := m.store.SaveRateLimits(m.counters); err != nil {
		m.log.Warn().Err(err).Msg("persist rate limit counters")
	}
}
