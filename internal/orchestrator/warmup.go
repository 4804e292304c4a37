package orchestrator

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/internal/snipeconfig"
)

// Warmup is the startup reconciliation pass: it walks every active
// SnipeConfig once to prime the config store's in-memory cache before the
// discovery stream starts, the same atomic-progress-counter shape this
// codebase's lineage uses for its own startup scan. Nothing should come
// up cold in front of a live discovery feed.
type Warmup struct {
	configs   *snipeconfig.Store
	log       zerolog.Logger
	total     atomic.Int64
	completed atomic.Int64
	running   atomic.Bool
}

// NewWarmup builds a Warmup over an existing config store.
func NewWarmup(configs *snipeconfig.Store, logger zerolog.Logger) *Warmup {
	return &Warmup{configs: configs, log: logger}
}

// Progress is a point-in-time snapshot exposed on /api/v1/warmup/progress.
type Progress struct {
	Running   bool  `json:"running"`
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
}

// GetProgress returns the current warm-up progress snapshot.
func (w *Warmup) GetProgress() Progress {
	return Progress{
		Running:   w.running.Load(),
		Total:     w.total.Load(),
		Completed: w.completed.Load(),
	}
}

// Run performs the warm-up pass once, synchronously.
func (w *Warmup) Run(ctx context.Context) error {
	w.running.Store(true)
	defer w.running.Store(false)

	configs, err := w.configs.ListActive(ctx)
	if err != nil {
		return err
	}
	w.total.Store(int64(len(configs)))

	for _, cfg := range configs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := w.configs.Get(ctx, cfg.UserID); err != nil {
			w.log.Warn().Err(err).Str("user_id", cfg.UserID).Msg("warmup failed to prime config cache for user")
		}
		w.completed.Add(1)
	}

	w.log.Info().Int64("total", w.total.Load()).Msg("warmup complete")
	return nil
}
