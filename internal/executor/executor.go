// Package executor is the Executor component (C8): a single sequential
// state machine per (user, event) attempt — rate limit, filter, honeypot
// check, lease load, quote, sign, swap, persist, notify — with no callback chains, the
// same linear shape this codebase's lineage uses for its own scan and
// order-execution pipelines.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/internal/filter"
	"github.com/rawblock/solana-sniper/internal/honeypot"
	"github.com/rawblock/solana-sniper/internal/jupiter"
	"github.com/rawblock/solana-sniper/internal/lease"
	"github.com/rawblock/solana-sniper/internal/notify"
	"github.com/rawblock/solana-sniper/internal/ratelimit"
	"github.com/rawblock/solana-sniper/internal/snipeconfig"
	"github.com/rawblock/solana-sniper/internal/store"
	"github.com/rawblock/solana-sniper/internal/telemetry"
	"github.com/rawblock/solana-sniper/internal/vault"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// Signer performs the wallet-side work the executor needs once it holds a
// decrypted secret key: build+sign the swap transaction for broadcast.
// Kept as a narrow interface so the executor never depends on a concrete
// transaction-building implementation.
type Signer interface {
	SignSwap(ctx context.Context, secretKey []byte, quote jupiter.Quote, priorityFeeLamports uint64) (signedTxBase64 string, err error)
}

// Executor runs the per-event state machine.
type Executor struct {
	leases   *lease.Store
	limiter  *ratelimit.Limiter
	detector *honeypot.Detector
	jupiter  *jupiter.Client
	signer   Signer
	db       *store.PostgresStore
	configs  *snipeconfig.Store
	notifier notify.Notifier
	log      zerolog.Logger
	metrics  *telemetry.Metrics
}

// New builds an Executor from its collaborators.
func New(leases *lease.Store, limiter *ratelimit.Limiter, detector *honeypot.Detector, jup *jupiter.Client, signer Signer, db *store.PostgresStore, configs *snipeconfig.Store, notifier notify.Notifier, logger zerolog.Logger, metrics *telemetry.Metrics) *Executor {
	return &Executor{
		leases: leases, limiter: limiter, detector: detector,
		jupiter: jup, signer: signer, db: db, configs: configs, notifier: notifier, log: logger, metrics: metrics,
	}
}

func (e *Executor) step(step string, start time.Time) {
	if e.metrics != nil {
		e.metrics.ExecutorStepMillis.WithLabelValues(step).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// Run executes the full state machine for one (user, event) pair and
// returns the terminal SnipeExecution. Run never panics out to the
// caller: any unexpected failure is recorded as a FAILED execution.
func (e *Executor) Run(ctx context.Context, cfg models.SnipeConfig, event models.NewTokenEvent) (exec models.SnipeExecution, err error) {
	exec = models.SnipeExecution{
		ExecutionID: uuid.NewString(),
		UserID:      cfg.UserID,
		Mint:        event.Mint,
		Source:      event.Source,
		State:       models.StatePending,
		DryRun:      cfg.DryRun,
		CreatedAt:   time.Now(),
	}
	logger := e.log.With().Str("execution_id", exec.ExecutionID).Str("user_id", cfg.UserID).Str("mint", event.Mint).Logger()

	defer func() {
		if r := recover(); r != nil {
			exec.State = models.StateFailed
			exec.FailureReason = fmt.Sprintf("panic: %v", r)
			logger.Error().Interface("panic", r).Msg("executor panicked, recorded as failed")
		}
		exec.UpdatedAt = time.Now()
		if saveErr := e.db.SaveExecution(ctx, exec); saveErr != nil {
			logger.Error().Err(saveErr).Msg("failed to persist execution")
		}
		if e.metrics != nil {
			e.metrics.Executions.WithLabelValues(string(exec.State)).Inc()
		}
		if exec.State == models.StateSucceeded && e.configs != nil {
			if err := e.configs.TouchLastAutomationAt(ctx, cfg.UserID, exec.UpdatedAt); err != nil {
				logger.Warn().Err(err).Msg("failed to record last automation timestamp")
			}
		}
		e.notify(ctx, cfg, exec)
	}()

	if err := e.limiter.Enforce(ctx, cfg.UserID, cfg.MaxPerHour, cfg.MaxPerDay); err != nil {
		exec.State = models.StateFailed
		exec.FailureReason = err.Error()
		logger.Info().Err(err).Msg("rate limit rejected event")
		return exec, nil
	}

	exec.State = models.StateFiltering
	preCheckDecision := filter.Apply(cfg, event, -1)
	if !preCheckDecision.Pass {
		exec.State = models.StateSkipped
		exec.SkipReason = preCheckDecision.Reason
		exec.FailureReason = preCheckDecision.Reason
		_ = e.limiter.Decrement(ctx, cfg.UserID)
		logger.Info().Str("reason", preCheckDecision.Reason).Msg("event filtered out before honeypot check")
		return exec, nil
	}

	exec.State = models.StateChecking
	honeypotStart := time.Now()
	honeypotResult, err := e.detector.Detect(ctx, event.Mint)
	if e.metrics != nil {
		e.metrics.HoneypotAnalysisMillis.Observe(float64(time.Since(honeypotStart).Milliseconds()))
	}
	if err != nil {
		exec.State = models.StateFailed
		exec.FailureReason = err.Error()
		_ = e.limiter.Decrement(ctx, cfg.UserID)
		logger.Warn().Err(err).Msg("honeypot check failed")
		return exec, nil
	}
	exec.HoneypotScore = honeypotResult.RiskScore
	if e.metrics != nil {
		result := "pass"
		if honeypotResult.RiskScore >= cfg.MaxHoneypotScore {
			result = "fail"
		}
		e.metrics.HoneypotChecks.WithLabelValues(result).Inc()
	}

	postCheckDecision := filter.Apply(cfg, event, honeypotResult.RiskScore)
	if !postCheckDecision.Pass {
		exec.State = models.StateSkipped
		exec.SkipReason = postCheckDecision.Reason
		exec.FailureReason = postCheckDecision.Reason
		_ = e.limiter.Decrement(ctx, cfg.UserID)
		logger.Info().Str("reason", postCheckDecision.Reason).Int("honeypot_score", honeypotResult.RiskScore).Msg("event filtered out after honeypot check")
		return exec, nil
	}

	walletID, secretKey, err := e.leases.Load(ctx, cfg.UserID)
	if err != nil {
		exec.State = models.StateFailed
		exec.FailureReason = fmt.Sprintf("lease: %v", err)
		_ = e.limiter.Decrement(ctx, cfg.UserID)
		if e.metrics != nil {
			e.metrics.LeaseFailures.WithLabelValues(leaseFailureReason(err)).Inc()
		}
		logger.Warn().Err(err).Msg("lease unavailable")
		return exec, nil
	}
	defer vault.Zero(secretKey)

	if cfg.DryRun {
		exec.State = models.StateSucceeded
		exec.QuoteAmount = cfg.BuyAmountQuote
		logger.Info().Str("wallet_id", walletID).Msg("dry run execution, no swap submitted")
		return exec, nil
	}

	exec.State = models.StateQuoting
	quoteStart := time.Now()
	amount := models.LamportsFromSOL(cfg.BuyAmountQuote)
	quote, err := e.jupiter.GetQuote(ctx, event.QuoteMint, event.Mint, amount, cfg.SlippageBps)
	e.step("quote", quoteStart)
	if err != nil {
		exec.State = models.StateFailed
		exec.FailureReason = fmt.Sprintf("quote: %v", err)
		_ = e.limiter.Decrement(ctx, cfg.UserID)
		logger.Warn().Err(err).Msg("quote failed")
		return exec, nil
	}
	exec.QuoteAmount = cfg.BuyAmountQuote

	exec.State = models.StateSwapping
	signStart := time.Now()
	signedTx, err := e.signer.SignSwap(ctx, secretKey, quote, cfg.PriorityFeeLamports)
	e.step("sign", signStart)
	if err != nil {
		exec.State = models.StateFailed
		exec.FailureReason = fmt.Sprintf("sign: %v", err)
		logger.Warn().Err(err).Msg("swap signing failed")
		return exec, nil
	}

	swapResult, err := e.jupiter.Swap(ctx, signedTx)
	if err != nil {
		exec.State = models.StateFailed
		exec.FailureReason = fmt.Sprintf("swap: %v", err)
		logger.Warn().Err(err).Msg("swap submission failed")
		return exec, nil
	}
	exec.TxSignature = swapResult.Signature

	exec.State = models.StateConfirming
	// No confirmation polling happens here or in the chain client: a
	// successful swap submission is treated as confirmed for this
	// execution's purposes.
	exec.State = models.StateSucceeded
	logger.Info().Str("tx_signature", exec.TxSignature).Msg("execution succeeded")

	return exec, nil
}

// leaseFailureReason maps a lease load error to the metric label this
// codebase's health/metrics shape expects: missing/expired/decrypt/other.
func leaseFailureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrLeaseMissing):
		return "missing"
	case errors.Is(err, models.ErrLeaseExpired):
		return "expired"
	case errors.Is(err, vault.ErrDecryptFailed):
		return "decrypt"
	default:
		return "other"
	}
}

// isTerminal reports whether state is one the notifier should report on.
func isTerminal(state models.ExecutionState) bool {
	switch state {
	case models.StateSucceeded, models.StateFailed, models.StateSkipped:
		return true
	default:
		return false
	}
}

// notify delivers exec's outcome subject to cfg's per-user gates: a
// successful snipe is reported only when notifyOnSuccess is set, a
// failed/skipped one only when notifyOnFailure is set.
func (e *Executor) notify(ctx context.Context, cfg models.SnipeConfig, exec models.SnipeExecution) {
	if !isTerminal(exec.State) {
		return
	}
	switch exec.State {
	case models.StateSucceeded:
		if !cfg.NotifyOnSuccess {
			return
		}
	case models.StateFailed, models.StateSkipped:
		if !cfg.NotifyOnFailure {
			return
		}
	}

	userID := cfg.UserID
	msg, err := notify.BuildMessage(userID, exec)
	if err != nil {
		e.log.Warn().Err(err).Msg("failed to build notification message")
		return
	}
	if err := e.notifier.Notify(ctx, userID, msg); err != nil {
		e.log.Warn().Err(err).Msg("notifier returned error")
	}
}
