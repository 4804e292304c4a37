// Package filter is the Filter + Dedup component (C7): an ordered,
// pure-function rule chain over SnipeConfig and NewTokenEvent, plus a
// Redis SET-NX-based cross-source/cross-process dedup.
package filter

import (
	"fmt"

	"github.com/rawblock/solana-sniper/pkg/models"
)

// Decision is the outcome of Apply: Pass indicates the event survives
// every rule; Reason explains a rejection for logging/metrics.
type Decision struct {
	Pass   bool
	Reason string
}

func reject(reason string) Decision { return Decision{Pass: false, Reason: reason} }

// Apply runs the ordered rule list against cfg/event/honeypot. honeypotScore
// is -1 when no honeypot check has run yet (the caller decides whether
// that's acceptable before calling Apply a second time post-check).
func Apply(cfg models.SnipeConfig, event models.NewTokenEvent, honeypotScore int) Decision {
	if !cfg.Enabled {
		return reject("config_disabled")
	}

	if len(cfg.Whitelist) > 0 && !containsMint(cfg.Whitelist, event.Mint) {
		return reject("mint_not_whitelisted")
	}

	if containsMint(cfg.MintBlacklist, event.Mint) {
		return reject("mint_blacklisted")
	}

	if event.InitialLiqUSD > 0 && event.InitialLiqUSD < cfg.MinLiquidityUSD {
		return reject("liquidity_below_minimum")
	}

	if cfg.MaxLiquidityUSD > 0 && event.InitialLiqUSD > cfg.MaxLiquidityUSD {
		return reject("liquidity_above_maximum")
	}

	if cfg.MinMarketCapUSD > 0 && event.MarketCapUSD < cfg.MinMarketCapUSD {
		return reject("market_cap_below_minimum")
	}

	if cfg.MaxMarketCapUSD > 0 && event.MarketCapUSD > cfg.MaxMarketCapUSD {
		return reject("market_cap_above_maximum")
	}

	if !sourceEnabled(cfg.Sources, event.Source) {
		return reject("source_not_enabled")
	}

	if honeypotScore >= 0 && cfg.MaxHoneypotScore > 0 && honeypotScore > cfg.MaxHoneypotScore {
		return reject(fmt.Sprintf("Risk score %d/100 exceeds limit", honeypotScore))
	}

	return Decision{Pass: true}
}

func sourceEnabled(sources []models.DexID, source models.DexID) bool {
	if len(sources) == 0 {
		return true // no explicit allowlist means every source is eligible
	}
	for _, s := range sources {
		if s == source {
			return true
		}
	}
	return false
}

func containsMint(set []string, mint string) bool {
	for _, m := range set {
		if m == mint {
			return true
		}
	}
	return false
}

// ValidationError is returned by ValidateConfig for a malformed SnipeConfig.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("snipe config: %s: %s", e.Field, e.Msg)
}

// ValidateConfig rejects a SnipeConfig that would cause the executor to
// misbehave (e.g. a zero buy amount) before it's ever persisted.
func ValidateConfig(cfg models.SnipeConfig) error {
	if cfg.BuyAmountQuote <= 0 {
		return &ValidationError{Field: "buyAmountQuote", Msg: "must be positive"}
	}
	if cfg.SlippageBps < 0 || cfg.SlippageBps > 10000 {
		return &ValidationError{Field: "slippageBps", Msg: "must be within [0, 10000]"}
	}
	if cfg.MaxHoneypotScore < 0 || cfg.MaxHoneypotScore > 100 {
		return &ValidationError{Field: "maxHoneypotScore", Msg: "must be within [0, 100]"}
	}
	return nil
}
