// Package orchestrator is the Orchestrator component (C9): fans discovery
// events out to per-user executions under a per-user in-flight guard and
// a global concurrency cap, the same semaphore-plus-atomic-counter shape
// this codebase's lineage uses for bounding concurrent order execution.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/internal/filter"
	"github.com/rawblock/solana-sniper/internal/lease"
	"github.com/rawblock/solana-sniper/internal/snipeconfig"
	"github.com/rawblock/solana-sniper/internal/telemetry"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// Runner is the subset of *executor.Executor the orchestrator depends on,
// kept as an interface so tests can stub it without standing up Redis,
// Postgres, and a Jupiter client.
type Runner interface {
	Run(ctx context.Context, cfg models.SnipeConfig, event models.NewTokenEvent) (models.SnipeExecution, error)
}

// Orchestrator wires discovery sources to the executor.
type Orchestrator struct {
	engines  []sourceEngine
	configs  *snipeconfig.Store
	leases   *lease.Store
	dedup    *filter.Dedup
	runner   Runner
	log      zerolog.Logger
	metrics  *telemetry.Metrics

	globalSem   chan struct{}
	inFlight    sync.Map // userID -> *atomic.Bool
	wg          sync.WaitGroup
}

type sourceEngine interface {
	Run(ctx context.Context)
	Events() <-chan models.NewTokenEvent
}

// New builds an Orchestrator. parallelism bounds total concurrent
// executions across all users (PARALLELISM.TOKEN_PROCESSING).
func New(configs *snipeconfig.Store, leases *lease.Store, dedup *filter.Dedup, runner Runner, parallelism int, logger zerolog.Logger, metrics *telemetry.Metrics) *Orchestrator {
	if parallelism <= 0 {
		parallelism = 10
	}
	return &Orchestrator{
		configs:   configs,
		leases:    leases,
		dedup:     dedup,
		runner:    runner,
		log:       logger,
		metrics:   metrics,
		globalSem: make(chan struct{}, parallelism),
	}
}

// AddEngine registers a discovery engine to be driven by Run.
func (o *Orchestrator) AddEngine(e sourceEngine) {
	o.engines = append(o.engines, e)
}

// Run starts every registered engine and processes events until ctx is
// cancelled, then waits for the engines and in-flight executions to finish.
// The wait has no deadline of its own; cmd/sniper bounds it with its
// shutdown timeout.
func (o *Orchestrator) Run(ctx context.Context) {
	var engineWG sync.WaitGroup
	merged := make(chan models.NewTokenEvent, 1024)

	for _, eng := range o.engines {
		engineWG.Add(1)
		go func(eng sourceEngine) {
			defer engineWG.Done()
			eng.Run(ctx)
		}(eng)

		go func(eng sourceEngine) {
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-eng.Events():
					if !ok {
						return
					}
					select {
					case merged <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}(eng)
	}

	for {
		select {
		case <-ctx.Done():
			engineWG.Wait()
			o.wg.Wait()
			return
		case ev := <-merged:
			o.handleEvent(ctx, ev)
		}
	}
}

func (o *Orchestrator) handleEvent(ctx context.Context, event models.NewTokenEvent) {
	activeConfigs, err := o.configs.ListActive(ctx)
	if err != nil {
		o.log.Error().Err(err).Msg("failed to list active configs")
		return
	}

	userIDs := make([]string, 0, len(activeConfigs))
	for _, c := range activeConfigs {
		userIDs = append(userIDs, c.UserID)
	}

	presence, err := o.leases.BatchPresence(ctx, userIDs)
	if err != nil {
		o.log.Error().Err(err).Msg("failed to check lease presence")
		return
	}

	for _, cfg := range activeConfigs {
		if !presence[cfg.UserID] {
			continue
		}
		o.dispatchUser(ctx, cfg, event)
	}
}

func (o *Orchestrator) dispatchUser(ctx context.Context, cfg models.SnipeConfig, event models.NewTokenEvent) {
	claimed, err := o.dedup.Claim(ctx, cfg.UserID, event.Mint)
	if err != nil {
		o.log.Error().Err(err).Msg("dedup claim failed")
		return
	}
	if !claimed {
		if o.metrics != nil {
			o.metrics.DedupDrops.Inc()
		}
		return
	}

	guard := o.guardFor(cfg.UserID)
	if !guard.CompareAndSwap(false, true) {
		return // a prior event for this user is still executing
	}

	select {
	case o.globalSem <- struct{}{}:
	case <-ctx.Done():
		guard.Store(false)
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() { <-o.globalSem }()
		defer guard.Store(false)

		if _, err := o.runner.Run(ctx, cfg, event); err != nil {
			o.log.Error().Err(err).Str("user_id", cfg.UserID).Str("mint", event.Mint).Msg("execution returned unexpected error")
		}
	}()
}

func (o *Orchestrator) guardFor(userID string) *atomic.Bool {
	v, _ := o.inFlight.LoadOrStore(userID, &atomic.Bool{})
	return v.(*atomic.Bool)
}
