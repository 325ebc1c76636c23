package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store counts events inside a sliding window. Implementations must be safe
// for concurrent use.
type Store interface {
	// Hit records one event for the key and returns how many events the
	// window now holds, including this one.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
	// Count returns the current number of events in the window without
	// recording a new one.
	Count(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter enforces a per-key event budget over a sliding window.
type Limiter struct {
	store  Store
	window time.Duration
}

func NewLimiter(store Store, window time.Duration) *Limiter {
	return &Limiter{store: store, window: window}
}

// Allow records an event and reports whether the key stayed within limit.
// The event is counted even when the answer is no, so hammering a limited
// endpoint keeps the window full.
func (l *Limiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	count, err := l.store.Hit(ctx, key, l.window)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}

// Remaining returns how many events the key has left in the current window.
func (l *Limiter) Remaining(ctx context.Context, key string, limit int) (int, error) {
	count, err := l.store.Count(ctx, key, l.window)
	if err != nil {
		return 0, err
	}
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// redisStore keeps one sorted set per key, scored by event timestamp.
// Entries older than the window are trimmed on every access.
type redisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) Store {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &redisStore{client: client, prefix: prefix}
}

func (s *redisStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *redisStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := now.Add(-window).UnixNano()
	rkey := s.key(key)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", fmt.Sprintf("%d", cutoff))
	pipe.ZAdd(ctx, rkey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	card := pipe.ZCard(ctx, rkey)
	pipe.Expire(ctx, rkey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return card.Val(), nil
}

func (s *redisStore) Count(ctx context.Context, key string, window time.Duration) (int64, error) {
	cutoff := time.Now().Add(-window).UnixNano()
	rkey := s.key(key)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", fmt.Sprintf("%d", cutoff))
	card := pipe.ZCard(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return card.Val(), nil
}

// memoryStore is the in-process fallback used in tests and when Redis is
// unavailable.
type memoryStore struct {
	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (s *memoryStore) trim(key string, window time.Duration) []time.Time {
	cutoff := s.now().Add(-window)
	kept := s.events[key][:0]
	for _, t := range s.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	s.events[key] = kept
	return kept
}

func (s *memoryStore) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trim(key, window)
	s.events[key] = append(s.events[key], s.now())
	return int64(len(s.events[key])), nil
}

func (s *memoryStore) Count(ctx context.Context, key string, window time.Duration) (int64, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.trim(key, window))), nil
}
