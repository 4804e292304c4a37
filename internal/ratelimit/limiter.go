// Package ratelimit is the domain Rate Limiter (C4): Redis-backed hourly
// and daily per-user buy counters, distinct from the HTTP-layer limiter in
// internal/api.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rawblock/solana-sniper/pkg/models"
)

// Window identifies which counter a breach came from.
type Window string

const (
	WindowHour Window = "hour"
	WindowDay  Window = "day"
)

// Limiter enforces per-user hourly/daily snipe counts. A limit of 0 means
// unlimited for that window.
type Limiter struct {
	rdb *redis.Client
}

// New builds a Limiter over an existing Redis client.
func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func hourKey(userID string, t time.Time) string {
	return fmt.Sprintf("snipe:rl:%s:hour:%d", userID, t.Unix()/3600)
}

func dayKey(userID string, t time.Time) string {
	return fmt.Sprintf("snipe:rl:%s:day:%d", userID, t.Unix()/86400)
}

func hourBoundary(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}

func dayBoundary(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// Exceeded reports which window (if any) a user has breached.
type Exceeded struct {
	Window Window
	Count  int64
	Limit  int
}

func (e *Exceeded) Error() string {
	return fmt.Sprintf("%s window exceeded: %d/%d", e.Window, e.Count, e.Limit)
}

// Enforce increments both the hourly and daily counters for userID and
// checks them against maxPerHour/maxPerDay. On a breach it compensates by
// decrementing whichever counters it already bumped, so a rejected attempt
// never counts against the user's budget, and returns an error wrapping
// models.ErrRateLimited whose message includes the *Exceeded description
// of the offending window (the *Exceeded itself is not wrapped).
func (l *Limiter) Enforce(ctx context.Context, userID string, maxPerHour, maxPerDay int) error {
	now := time.Now()
	hk := hourKey(userID, now)
	dk := dayKey(userID, now)

	hourCount, err := l.incrWithExpiry(ctx, hk, hourBoundary(now))
	if err != nil {
		return fmt.Errorf("ratelimit: incr hour: %w", err)
	}

	dayCount, err := l.incrWithExpiry(ctx, dk, dayBoundary(now))
	if err != nil {
		_ = l.rdb.Decr(ctx, hk).Err()
		return fmt.Errorf("ratelimit: incr day: %w", err)
	}

	if maxPerHour > 0 && hourCount > int64(maxPerHour) {
		_ = l.rdb.Decr(ctx, hk).Err()
		_ = l.rdb.Decr(ctx, dk).Err()
		return fmt.Errorf("%w: %v", models.ErrRateLimited, &Exceeded{Window: WindowHour, Count: hourCount, Limit: maxPerHour})
	}
	if maxPerDay > 0 && dayCount > int64(maxPerDay) {
		_ = l.rdb.Decr(ctx, hk).Err()
		_ = l.rdb.Decr(ctx, dk).Err()
		return fmt.Errorf("%w: %v", models.ErrRateLimited, &Exceeded{Window: WindowDay, Count: dayCount, Limit: maxPerDay})
	}

	return nil
}

func (l *Limiter) incrWithExpiry(ctx context.Context, key string, boundary time.Time) (int64, error) {
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// First increment in this window: set the key to expire at the
		// window boundary so a crash mid-window never leaves a stale
		// un-expiring counter.
		_ = l.rdb.ExpireAt(ctx, key, boundary).Err()
	}
	return count, nil
}

// Decrement un-counts a single attempt for userID in both windows; called
// by the executor on failures that should not consume the user's budget
// (e.g. a filtered-out event that slipped through before Enforce, or an
// infrastructure error unrelated to the attempt itself).
func (l *Limiter) Decrement(ctx context.Context, userID string) error {
	now := time.Now()
	if err := l.rdb.Decr(ctx, hourKey(userID, now)).Err(); err != nil {
		return fmt.Errorf("ratelimit: decrement hour: %w", err)
	}
	if err := l.rdb.Decr(ctx, dayKey(userID, now)).Err(); err != nil {
		return fmt.Errorf("ratelimit: decrement day: %w", err)
	}
	return nil
}
