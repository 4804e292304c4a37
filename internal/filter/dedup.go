package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultWindow is the uniform dedup window applied across every source
// and every user (see DESIGN.md Open Question 2).
const DefaultWindow = 60 * time.Second

// Dedup is a Redis SET-NX-backed first-winner-proceeds guard: unlike an
// in-process map, it stays correct across multiple orchestrator workers
// and survives a process restart mid-window.
type Dedup struct {
	rdb    *redis.Client
	window time.Duration
}

// New builds a Dedup using DefaultWindow.
func New(rdb *redis.Client) *Dedup {
	return &Dedup{rdb: rdb, window: DefaultWindow}
}

func key(userID, mint string) string {
	return fmt.Sprintf("snipe:dedup:%s:%s", userID, mint)
}

// Claim atomically reports whether this (userID, mint) pair is newly seen.
// Only the first caller within the window gets true; everyone else gets
// false without a read-then-write race.
func (d *Dedup) Claim(ctx context.Context, userID, mint string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, key(userID, mint), 1, d.window).Result()
	if err != nil {
		return false, fmt.Errorf("filter: dedup claim: %w", err)
	}
	return ok, nil
}
