// Package ratelimit keeps keyed token-bucket limiters with idle eviction.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/clock"
)

// Store holds one limiter per key. Limiters are created on first use and evicted by
// Cleanup once idle for longer than the configured TTL.
type Store struct {
	limiters sync.Map // map[string]*limiterEntry
	clock    clock.Clock
	idleTTL  time.Duration
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// NewStore creates a Store reading time from clk.
func NewStore(clk clock.Clock, idleTTL time.Duration) *Store {
	return &Store{clock: clk, idleTTL: idleTTL}
}

// Allow consumes one token from the limiter for key, creating it with limit/burst when
// missing. The bucket refills at limit and starts full.
func (s *Store) Allow(key string, limit rate.Limit, burst int) bool {
	now := s.clock.Now()
	entry := s.entry(key, limit, burst, now)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastAccess = now
	return entry.limiter.AllowN(now, 1)
}

// Cleanup evicts limiters not accessed within the idle TTL and returns how many were removed.
func (s *Store) Cleanup() int {
	threshold := s.clock.Now().Add(-s.idleTTL)
	removed := 0
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if stale {
			s.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Len returns the number of tracked limiters.
func (s *Store) Len() int {
	n := 0
	s.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *Store) entry(key string, limit rate.Limit, burst int, now time.Time) *limiterEntry {
	if val, ok := s.limiters.Load(key); ok {
		return val.(*limiterEntry)
	}
	fresh := &limiterEntry{limiter: rate.NewLimiter(limit, burst), lastAccess: now}
	val, _ := s.limiters.LoadOrStore(key, fresh)
	return val.(*limiterEntry)
}

// PerMinute returns a limit refilling n tokens per minute.
func PerMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

// PerHour returns a limit refilling n tokens per hour.
func PerHour(n int) rate.Limit {
	return rate.Every(time.Hour / time.Duration(n))
}

// MatchLimit finds the limit for name in limits. An exact entry wins; otherwise the
// longest "prefix*" pattern matching name is used. Returns false when nothing matches.
func MatchLimit(limits map[string]int, name string) (string, int, bool) {
	if n, ok := limits[name]; ok {
		return name, n, true
	}

	bestPattern, bestLimit := "", 0
	for pattern, n := range limits {
		prefix, wildcard := strings.CutSuffix(pattern, "*")
		if !wildcard || !strings.HasPrefix(name, prefix) {
			continue
		}
		if len(pattern) > len(bestPattern) {
			bestPattern, bestLimit = pattern, n
		}
	}
	return bestPattern, bestLimit, bestPattern != ""
}
