// Package ratelimit implements fixed-window counters keyed by an opaque token.
// A rejected call is reported through domain.RateLimitDecision, never as an error.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/domain"
)

// Memory counts calls per token in a bounded LRU. When more than maxTokens
// tokens are live the least recently seen one is dropped.
type Memory struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, domain.RateLimitEntry]
	interval time.Duration
	clock    clockwork.Clock
}

func NewMemory(maxTokens int, interval time.Duration, clock clockwork.Clock) (*Memory, error) {
	entries, err := lru.New[string, domain.RateLimitEntry](maxTokens)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: %w", err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{entries: entries, interval: interval, clock: clock}, nil
}

// Check records one call for token and reports whether it is within limit.
func (m *Memory) Check(_ context.Context, limit int, token string) (domain.RateLimitDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	e, ok := m.entries.Get(token)
	if !ok || now.After(e.WindowResetAt) {
		e = domain.RateLimitEntry{Token: token, Count: 0, WindowResetAt: now.Add(m.interval)}
	}

	if limit <= 0 || e.Count >= limit {
		m.entries.Add(token, e)
		return decision(false, limit, e), nil
	}
	e.Count++
	m.entries.Add(token, e)
	return decision(true, limit, e), nil
}

func decision(allowed bool, limit int, e domain.RateLimitEntry) domain.RateLimitDecision {
	remaining := limit - e.Count
	if remaining < 0 {
		remaining = 0
	}
	return domain.RateLimitDecision{
		Allowed:   allowed,
		Limit:     limit,
		Count:     e.Count,
		Remaining: remaining,
		ResetAt:   e.WindowResetAt,
	}
}
