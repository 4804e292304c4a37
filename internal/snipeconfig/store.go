// Package snipeconfig is the Config Store: Postgres-backed CRUD for
// per-user SnipeConfig with a short in-memory read cache.
package snipeconfig

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rawblock/solana-sniper/pkg/models"
)

const cacheTTL = 30 * time.Second

type cacheEntry struct {
	cfg       models.SnipeConfig
	cachedAt  time.Time
}

// Store is the Config Store. It wraps a Postgres pool with a sync.Map
// read cache keyed by userID, the same TTL-check shape used for hot-path
// symbol/price caches elsewhere in this codebase's lineage.
type Store struct {
	pool  *pgxpool.Pool
	cache sync.Map // userID -> cacheEntry
}

// New builds a Store over an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Get returns a user's SnipeConfig, serving from cache when fresh.
func (s *Store) Get(ctx context.Context, userID string) (models.SnipeConfig, error) {
	if v, ok := s.cache.Load(userID); ok {
		entry := v.(cacheEntry)
		if time.Since(entry.cachedAt) < cacheTTL {
			return entry.cfg, nil
		}
	}

	cfg, err := s.loadFromDB(ctx, userID)
	if err != nil {
		return models.SnipeConfig{}, err
	}

	s.cache.Store(userID, cacheEntry{cfg: cfg, cachedAt: time.Now()})
	return cfg, nil
}

func (s *Store) loadFromDB(ctx context.Context, userID string) (models.SnipeConfig, error) {
	const q = `
		SELECT user_id, enabled, sources, buy_amount_quote, slippage_bps,
		       priority_fee_lamports, min_liquidity_usd, max_liquidity_usd,
		       min_market_cap_usd, max_market_cap_usd,
		       min_holder_count, max_honeypot_score, whitelist, mint_blacklist,
		       max_per_hour, max_per_day, dry_run,
		       notify_on_success, notify_on_failure, last_automation_at, updated_at
		FROM snipe_configs WHERE user_id = $1
	`
	var cfg models.SnipeConfig
	var sources, whitelist, blacklist []string
	var lastAutomationAt *time.Time
	row := s.pool.QueryRow(ctx, q, userID)
	err := row.Scan(
		&cfg.UserID, &cfg.Enabled, &sources, &cfg.BuyAmountQuote, &cfg.SlippageBps,
		&cfg.PriorityFeeLamports, &cfg.MinLiquidityUSD, &cfg.MaxLiquidityUSD,
		&cfg.MinMarketCapUSD, &cfg.MaxMarketCapUSD,
		&cfg.MinHolderCount, &cfg.MaxHoneypotScore, &whitelist, &blacklist,
		&cfg.MaxPerHour, &cfg.MaxPerDay, &cfg.DryRun,
		&cfg.NotifyOnSuccess, &cfg.NotifyOnFailure, &lastAutomationAt, &cfg.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return models.SnipeConfig{}, models.ErrNotFound
	}
	if err != nil {
		return models.SnipeConfig{}, fmt.Errorf("snipeconfig: query: %w", err)
	}
	cfg.Sources = toDexIDs(sources)
	cfg.Whitelist = whitelist
	cfg.MintBlacklist = blacklist
	if lastAutomationAt != nil {
		cfg.LastAutomationAt = *lastAutomationAt
	}
	return cfg, nil
}

func toDexIDs(ss []string) []models.DexID {
	out := make([]models.DexID, len(ss))
	for i, s := range ss {
		out[i] = models.DexID(s)
	}
	return out
}

func fromDexIDs(ds []models.DexID) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = string(d)
	}
	return out
}

// Upsert writes a SnipeConfig, invalidating the cache entry for that user
// before returning so the next Get reflects the write.
func (s *Store) Upsert(ctx context.Context, cfg models.SnipeConfig) error {
	const q = `
		INSERT INTO snipe_configs
			(user_id, enabled, sources, buy_amount_quote, slippage_bps,
			 priority_fee_lamports, min_liquidity_usd, max_liquidity_usd,
			 min_market_cap_usd, max_market_cap_usd,
			 min_holder_count, max_honeypot_score, whitelist, mint_blacklist,
			 max_per_hour, max_per_day, dry_run,
			 notify_on_success, notify_on_failure, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			sources = EXCLUDED.sources,
			buy_amount_quote = EXCLUDED.buy_amount_quote,
			slippage_bps = EXCLUDED.slippage_bps,
			priority_fee_lamports = EXCLUDED.priority_fee_lamports,
			min_liquidity_usd = EXCLUDED.min_liquidity_usd,
			max_liquidity_usd = EXCLUDED.max_liquidity_usd,
			min_market_cap_usd = EXCLUDED.min_market_cap_usd,
			max_market_cap_usd = EXCLUDED.max_market_cap_usd,
			min_holder_count = EXCLUDED.min_holder_count,
			max_honeypot_score = EXCLUDED.max_honeypot_score,
			whitelist = EXCLUDED.whitelist,
			mint_blacklist = EXCLUDED.mint_blacklist,
			max_per_hour = EXCLUDED.max_per_hour,
			max_per_day = EXCLUDED.max_per_day,
			dry_run = EXCLUDED.dry_run,
			notify_on_success = EXCLUDED.notify_on_success,
			notify_on_failure = EXCLUDED.notify_on_failure,
			updated_at = NOW();
	`
	_, err := s.pool.Exec(ctx, q,
		cfg.UserID, cfg.Enabled, fromDexIDs(cfg.Sources), cfg.BuyAmountQuote, cfg.SlippageBps,
		cfg.PriorityFeeLamports, cfg.MinLiquidityUSD, cfg.MaxLiquidityUSD,
		cfg.MinMarketCapUSD, cfg.MaxMarketCapUSD,
		cfg.MinHolderCount, cfg.MaxHoneypotScore, cfg.Whitelist, cfg.MintBlacklist,
		cfg.MaxPerHour, cfg.MaxPerDay, cfg.DryRun,
		cfg.NotifyOnSuccess, cfg.NotifyOnFailure,
	)
	if err != nil {
		return fmt.Errorf("snipeconfig: upsert: %w", err)
	}

	s.cache.Delete(cfg.UserID)
	return nil
}

// TouchLastAutomationAt records the time of a successful automated snipe
// for userID, invalidating the read cache so the next Get reflects it.
func (s *Store) TouchLastAutomationAt(ctx context.Context, userID string, at time.Time) error {
	const q = `UPDATE snipe_configs SET last_automation_at = $1 WHERE user_id = $2`
	if _, err := s.pool.Exec(ctx, q, at, userID); err != nil {
		return fmt.Errorf("snipeconfig: touch last automation: %w", err)
	}
	s.cache.Delete(userID)
	return nil
}

// ListActive returns every enabled SnipeConfig, bypassing the cache; used
// by the startup warm-up pass and by the orchestrator on every event.
func (s *Store) ListActive(ctx context.Context) ([]models.SnipeConfig, error) {
	const q = `SELECT user_id FROM snipe_configs WHERE enabled = true`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("snipeconfig: list active: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("snipeconfig: scan: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	out := make([]models.SnipeConfig, 0, len(userIDs))
	for _, id := range userIDs {
		cfg, err := s.loadFromDB(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}
