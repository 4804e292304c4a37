// Package store is the Persistence Schema component (C10): Postgres CRUD
// and upserts for users, wallets, configs, executions, positions, and the
// honeypot-check mirror, built on the same pgxpool connect/transaction
// shape this codebase's lineage uses for its own analysis persistence.
package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/pkg/models"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore wraps a pgxpool connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect dials Postgres and verifies the connection with a Ping before
// returning, mirroring the teacher's connect-then-verify pattern.
func Connect(ctx context.Context, connStr string, maxConns int32, logger zerolog.Logger) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("store: parse config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	logger.Info().Msg("connected to postgres")
	return &PostgresStore{pool: pool, log: logger}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema executes the embedded schema.sql.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	s.log.Info().Msg("schema initialized")
	return nil
}

// Pool exposes the connection pool for collaborators wired at startup
// (internal/snipeconfig uses the same pool directly).
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// SaveExecution inserts a new SnipeExecution row carrying e's current
// state and fields; the executor calls it once, with the terminal state.
func (s *PostgresStore) SaveExecution(ctx context.Context, e models.SnipeExecution) error {
	const q = `
		INSERT INTO snipe_executions
			(execution_id, user_id, mint, source, state, skip_reason, failure_reason,
			 honeypot_score, quote_amount, token_amount, tx_signature, dry_run, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''),$8,$9,$10,NULLIF($11,''),$12,NOW(),NOW())
	`
	_, err := s.pool.Exec(ctx, q,
		e.ExecutionID, e.UserID, e.Mint, e.Source, e.State, e.SkipReason, e.FailureReason,
		e.HoneypotScore, e.QuoteAmount, e.TokenAmount, e.TxSignature, e.DryRun,
	)
	if err != nil {
		return fmt.Errorf("store: save execution: %w", err)
	}
	return nil
}

// UpdateExecutionStatus transitions an execution to a new state, recording
// whichever optional fields the transition carries.
func (s *PostgresStore) UpdateExecutionStatus(ctx context.Context, executionID string, state models.ExecutionState, fields map[string]any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE snipe_executions SET state = $1, updated_at = NOW() WHERE execution_id = $2`, state, executionID); err != nil {
		return fmt.Errorf("store: update state: %w", err)
	}

	for col, val := range fields {
		if !allowedExecutionColumn(col) {
			return fmt.Errorf("store: invalid column %q", col)
		}
		q := fmt.Sprintf("UPDATE snipe_executions SET %s = $1 WHERE execution_id = $2", col)
		if _, err := tx.Exec(ctx, q, val, executionID); err != nil {
			return fmt.Errorf("store: update column %s: %w", col, err)
		}
	}

	return tx.Commit(ctx)
}

// allowedExecutionColumn validates a dynamic column name before it's
// formatted into SQL, the same allowlist-then-format approach this
// codebase's lineage uses for any dynamic column/table name.
func allowedExecutionColumn(col string) bool {
	allowed := map[string]bool{
		"skip_reason": true, "failure_reason": true, "honeypot_score": true,
		"quote_amount": true, "token_amount": true, "tx_signature": true,
	}
	return allowed[col]
}

// UpsertPosition records (or updates) the fact that a position was opened.
func (s *PostgresStore) UpsertPosition(ctx context.Context, p models.SniperPosition) error {
	const q = `
		INSERT INTO sniper_positions (position_id, execution_id, user_id, mint, token_amount, entry_price, opened_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		ON CONFLICT (position_id) DO UPDATE SET
			token_amount = EXCLUDED.token_amount,
			entry_price = EXCLUDED.entry_price;
	`
	_, err := s.pool.Exec(ctx, q, p.PositionID, p.ExecutionID, p.UserID, p.Mint, p.TokenAmount, p.EntryPrice)
	if err != nil {
		return fmt.Errorf("store: upsert position: %w", err)
	}

	const monitorQ = `
		INSERT INTO position_monitors (position_id, status, last_check_at)
		VALUES ($1, 'open', NOW())
		ON CONFLICT (position_id) DO NOTHING;
	`
	if _, err := s.pool.Exec(ctx, monitorQ, p.PositionID); err != nil {
		return fmt.Errorf("store: init position monitor: %w", err)
	}
	return nil
}

// UpsertHoneypotCheck mirrors a non-cache-hit honeypot evaluation to
// Postgres so the evaluated corpus survives a restart.
func (s *PostgresStore) UpsertHoneypotCheck(ctx context.Context, c models.HoneypotCheck) error {
	const q = `
		INSERT INTO honeypot_checks (mint, risk_score, confidence, flags, conclusive, evaluated_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		ON CONFLICT (mint) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			confidence = EXCLUDED.confidence,
			flags = EXCLUDED.flags,
			conclusive = EXCLUDED.conclusive,
			evaluated_at = NOW();
	`
	_, err := s.pool.Exec(ctx, q, c.Mint, c.RiskScore, c.Confidence, c.Flags, c.Conclusive)
	if err != nil {
		return fmt.Errorf("store: upsert honeypot check: %w", err)
	}
	return nil
}

// SaveWallet records a vault-managed wallet's public key.
func (s *PostgresStore) SaveWallet(ctx context.Context, w models.Wallet) error {
	const q = `
		INSERT INTO wallets (wallet_id, user_id, public_key, created_at)
		VALUES ($1,$2,$3,NOW())
		ON CONFLICT (wallet_id) DO NOTHING;
	`
	_, err := s.pool.Exec(ctx, q, w.WalletID, w.UserID, w.PublicKey)
	if err != nil {
		return fmt.Errorf("store: save wallet: %w", err)
	}
	return nil
}

// ListExecutions paginates a user's execution history, most recent first.
func (s *PostgresStore) ListExecutions(ctx context.Context, userID string, limit, offset int) ([]models.SnipeExecution, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	const q = `
		SELECT execution_id, user_id, mint, source, state,
		       COALESCE(skip_reason, ''), COALESCE(failure_reason, ''),
		       COALESCE(honeypot_score, 0), COALESCE(quote_amount, 0), COALESCE(token_amount, 0),
		       COALESCE(tx_signature, ''), dry_run, created_at, updated_at
		FROM snipe_executions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := s.pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: list executions: %w", err)
	}
	defer rows.Close()

	var out []models.SnipeExecution
	for rows.Next() {
		var e models.SnipeExecution
		if err := rows.Scan(
			&e.ExecutionID, &e.UserID, &e.Mint, &e.Source, &e.State,
			&e.SkipReason, &e.FailureReason, &e.HoneypotScore, &e.QuoteAmount, &e.TokenAmount,
			&e.TxSignature, &e.DryRun, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: scan execution: %w", err)
		}
		out = append(out, e)
	}
	if out == nil {
		out = []models.SnipeExecution{}
	}
	return out, nil
}
