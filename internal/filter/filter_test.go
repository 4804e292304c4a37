package filter

import (
	"testing"

	"github.com/rawblock/solana-sniper/pkg/models"
)

func baseConfig() models.SnipeConfig {
	return models.SnipeConfig{
		Enabled:          true,
		Sources:          []models.DexID{models.DexRaydiumV4},
		MinLiquidityUSD:  1000,
		MaxMarketCapUSD:  5_000_000,
		MaxHoneypotScore: 50,
	}
}

func baseEvent() models.NewTokenEvent {
	return models.NewTokenEvent{
		Source:       models.DexRaydiumV4,
		Mint:         "MintAAA",
		InitialLiqUSD: 2000,
		MarketCapUSD: 100_000,
	}
}

func TestApplyPassesHappyPath(t *testing.T) {
	got := Apply(baseConfig(), baseEvent(), 10)
	if !got.Pass {
		t.Fatalf("Apply() = %+v, want Pass=true", got)
	}
}

func TestApplyRejectsDisabledConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Enabled = false
	got := Apply(cfg, baseEvent(), 10)
	if got.Pass || got.Reason != "config_disabled" {
		t.Fatalf("Apply() = %+v, want config_disabled", got)
	}
}

func TestApplyRejectsWrongSource(t *testing.T) {
	ev := baseEvent()
	ev.Source = models.DexMeteora
	got := Apply(baseConfig(), ev, 10)
	if got.Pass || got.Reason != "source_not_enabled" {
		t.Fatalf("Apply() = %+v, want source_not_enabled", got)
	}
}

func TestApplyRejectsLowLiquidity(t *testing.T) {
	ev := baseEvent()
	ev.InitialLiqUSD = 100
	got := Apply(baseConfig(), ev, 10)
	if got.Pass || got.Reason != "liquidity_below_minimum" {
		t.Fatalf("Apply() = %+v, want liquidity_below_minimum", got)
	}
}

func TestApplyRejectsHighMarketCap(t *testing.T) {
	ev := baseEvent()
	ev.MarketCapUSD = 10_000_000
	got := Apply(baseConfig(), ev, 10)
	if got.Pass || got.Reason != "market_cap_above_maximum" {
		t.Fatalf("Apply() = %+v, want market_cap_above_maximum", got)
	}
}

func TestApplyRejectsBlacklistedMint(t *testing.T) {
	cfg := baseConfig()
	cfg.MintBlacklist = []string{"MintAAA"}
	got := Apply(cfg, baseEvent(), 10)
	if got.Pass || got.Reason != "mint_blacklisted" {
		t.Fatalf("Apply() = %+v, want mint_blacklisted", got)
	}
}

func TestApplyRejectsHighHoneypotScore(t *testing.T) {
	got := Apply(baseConfig(), baseEvent(), 90)
	if got.Pass || got.Reason != "Risk score 90/100 exceeds limit" {
		t.Fatalf("Apply() = %+v, want \"Risk score 90/100 exceeds limit\"", got)
	}
}

func TestApplyRejectsMintNotWhitelisted(t *testing.T) {
	cfg := baseConfig()
	cfg.Whitelist = []string{"MintOther"}
	got := Apply(cfg, baseEvent(), 10)
	if got.Pass || got.Reason != "mint_not_whitelisted" {
		t.Fatalf("Apply() = %+v, want mint_not_whitelisted", got)
	}
}

func TestApplyPassesWhenMintInWhitelist(t *testing.T) {
	cfg := baseConfig()
	cfg.Whitelist = []string{"MintAAA"}
	got := Apply(cfg, baseEvent(), 10)
	if !got.Pass {
		t.Fatalf("Apply() = %+v, want Pass=true for whitelisted mint", got)
	}
}

func TestApplyRejectsHighLiquidity(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxLiquidityUSD = 5000
	ev := baseEvent()
	ev.InitialLiqUSD = 10_000
	got := Apply(cfg, ev, 10)
	if got.Pass || got.Reason != "liquidity_above_maximum" {
		t.Fatalf("Apply() = %+v, want liquidity_above_maximum", got)
	}
}

func TestApplyRejectsLowMarketCap(t *testing.T) {
	cfg := baseConfig()
	cfg.MinMarketCapUSD = 50_000
	ev := baseEvent()
	ev.MarketCapUSD = 10_000
	got := Apply(cfg, ev, 10)
	if got.Pass || got.Reason != "market_cap_below_minimum" {
		t.Fatalf("Apply() = %+v, want market_cap_below_minimum", got)
	}
}

func TestApplySkipsHoneypotRuleWhenUnchecked(t *testing.T) {
	got := Apply(baseConfig(), baseEvent(), -1)
	if !got.Pass {
		t.Fatalf("Apply() = %+v, want Pass=true when honeypotScore unchecked", got)
	}
}

func TestValidateConfigRejectsZeroBuyAmount(t *testing.T) {
	cfg := baseConfig()
	cfg.BuyAmountQuote = 0
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("ValidateConfig() = nil, want error for zero buy amount")
	}
}

func TestValidateConfigAcceptsValid(t *testing.T) {
	cfg := baseConfig()
	cfg.BuyAmountQuote = 1.5
	cfg.SlippageBps = 100
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateConfig() error = %v, want nil", err)
	}
}
