package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/internal/telemetry"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// logLine is one program-log notification (or a subscription error). It
// does not record which program subscription produced it; every line in an
// engine belongs to that engine's single Source.
type logLine struct {
	signature string
	slot      uint64
	logs      []string
	err       error
}

// baseEngine is the plumbing shared by every DEX Source: per-program
// websocket subscriptions merged into one buffered channel, an in-flight
// dedup set keyed by signature, a bounded worker pool that fetches+parses
// full transactions, and reconnect-with-backoff on subscription failure.
// This is the direct generalization of the merge-channels-into-one-buffer
// pattern used for multi-program log ingestion elsewhere in this lineage.
type baseEngine struct {
	source   Source
	wsClient *ws.Client
	tuning   Tuning
	log      zerolog.Logger
	metrics  *telemetry.Metrics

	seen   sync.Map // signature -> struct{}, in-flight/recent dedup
	events chan models.NewTokenEvent
}

func newBaseEngine(source Source, wsClient *ws.Client, tuning Tuning, logger zerolog.Logger, metrics *telemetry.Metrics) *baseEngine {
	return &baseEngine{
		source:   source,
		wsClient: wsClient,
		tuning:   tuning,
		log:      logger.With().Str("source", string(source.DexID())).Logger(),
		metrics:  metrics,
		events:   make(chan models.NewTokenEvent, tuning.QueueSize),
	}
}

// Engine is a running discovery source: subscribe to its programs' logs,
// parse pool-inits, emit NewTokenEvents. Callers outside this package get
// one only through NewEngine, never by constructing baseEngine directly.
type Engine = baseEngine

// NewEngine builds a ready-to-run Engine for source, driven off wsClient.
// cmd/sniper wires one of these per DEX Source and registers it with the
// orchestrator.
func NewEngine(source Source, wsClient *ws.Client, tuning Tuning, logger zerolog.Logger, metrics *telemetry.Metrics) *Engine {
	return newBaseEngine(source, wsClient, tuning, logger, metrics)
}

// Events returns the channel of detected pool-init events for this source.
func (e *baseEngine) Events() <-chan models.NewTokenEvent {
	return e.events
}

// Run subscribes to every program this source cares about and processes
// log lines until ctx is cancelled, reconnecting with exponential backoff
// (starting at 5s, capped at 10 attempts) on subscription failure.
func (e *baseEngine) Run(ctx context.Context) {
	backoff := 5 * time.Second
	attempts := 0

	for {
		if ctx.Err() != nil {
			return
		}

		err := e.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			attempts = 0
			continue
		}

		attempts++
		e.log.Error().Err(err).Int("attempt", attempts).Dur("backoff", backoff).Msg("discovery subscription failed, reconnecting")
		if attempts >= 10 {
			e.log.Error().Msg("discovery subscription exhausted reconnect attempts, giving up")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 80*time.Second {
			backoff *= 2
		}
	}
}

func (e *baseEngine) runOnce(ctx context.Context) error {
	merged := make(chan logLine, e.tuning.QueueSize)
	var wg sync.WaitGroup

	for _, programID := range e.source.ProgramIDs() {
		pubkey, err := solana.PublicKeyFromBase58(programID)
		if err != nil {
			return err
		}

		sub, err := e.wsClient.LogsSubscribeMentions(pubkey, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func(sub *ws.LogSubscription) {
			defer wg.Done()
			defer sub.Unsubscribe()
			for {
				result, err := sub.Recv(ctx)
				if err != nil {
					select {
					case merged <- logLine{err: err}:
					case <-ctx.Done():
					}
					return
				}
				line := logLine{
					signature: result.Value.Signature.String(),
					slot:      result.Context.Slot,
					logs:      result.Value.Logs,
					err:       nil,
				}
				if result.Value.Err != nil {
					continue // failed transactions are never pool-inits worth fetching
				}
				select {
				case merged <- line:
				case <-ctx.Done():
					return
				default:
					// Bounded overflow: drop the oldest queued line to make
					// room rather than block the subscription reader, so a
					// burst never backs up the websocket connection itself.
					select {
					case <-merged:
					default:
					}
					select {
					case merged <- line:
					default:
					}
				}
			}
		}(sub)
	}

	workSem := make(chan struct{}, e.tuning.Concurrency)
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case line, ok := <-merged:
			if !ok {
				wg.Wait()
				return nil
			}
			if line.err != nil {
				wg.Wait()
				return line.err
			}
			e.dispatch(ctx, line, workSem)
		}
	}
}

func (e *baseEngine) dispatch(ctx context.Context, line logLine, workSem chan struct{}) {
	if !e.hasPoolInitLog(line.logs) {
		return
	}
	if _, loaded := e.seen.LoadOrStore(line.signature, struct{}{}); loaded {
		return
	}

	select {
	case workSem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	go func() {
		defer func() { <-workSem }()
		if e.tuning.FetchSpacing > 0 {
			time.Sleep(e.tuning.FetchSpacing)
		}
		e.process(ctx, line.signature, line.slot)
	}()
}

func (e *baseEngine) hasPoolInitLog(logs []string) bool {
	for _, l := range logs {
		if e.source.IsPoolInitLog(l) {
			return true
		}
	}
	return false
}

func (e *baseEngine) process(ctx context.Context, sig string, slot uint64) {
	detection, err := e.source.ParsePoolInit(ctx, sig)
	if err != nil {
		e.log.Warn().Err(err).Str("signature", sig).Msg("pool-init parse failed")
		return
	}

	event := models.NewTokenEvent{
		Source:          e.source.DexID(),
		Mint:            detection.Mint,
		PoolAddress:     detection.PoolAddress,
		QuoteMint:       detection.QuoteMint,
		InitialLiqQuote: deriveLiquidity(detection),
		Signature:       sig,
		Slot:            slot,
		DetectedAt:      time.Now(),
	}

	if e.metrics != nil {
		e.metrics.DiscoveryEvents.WithLabelValues(string(e.source.DexID())).Inc()
	}

	select {
	case e.events <- event:
	case <-ctx.Done():
	default:
		if e.metrics != nil {
			e.metrics.DiscoveryQueueOverflow.WithLabelValues(string(e.source.DexID())).Inc()
		}
		e.log.Warn().Str("mint", event.Mint).Msg("discovery event queue full, dropping")
	}
}

// deriveLiquidity derives the quote-side liquidity added by a pool-init
// from the pre/post balance delta, the same technique used across this
// lineage's swap/pool parsers.
func deriveLiquidity(d RawPoolDetection) float64 {
	delta := d.PostQuoteBalance - d.PreQuoteBalance
	if delta < 0 {
		return 0
	}
	return delta
}
