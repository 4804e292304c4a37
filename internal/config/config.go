// Package config loads and validates the sniper engine's runtime
// configuration from environment variables (with a local .env in
// development), the way the rest of the Solana tooling in this codebase's
// lineage does.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// RedisConfig configures the KV store backing leases, rate counters,
// the honeypot cache, and cross-source dedup keys.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SolanaConfig configures chain access.
type SolanaConfig struct {
	RPCEndpoint string `mapstructure:"rpc_endpoint" validate:"required"`
	WSEndpoint  string `mapstructure:"ws_endpoint" validate:"required"`
	Commitment  string `mapstructure:"commitment"`
}

// TradingConfig holds global (not per-user) trading defaults and caps.
type TradingConfig struct {
	GlobalParallelism    int `mapstructure:"global_parallelism"`
	PerUserMaxConcurrent int `mapstructure:"per_user_max_concurrent"`
	DedupWindowSeconds   int `mapstructure:"dedup_window_seconds"`
}

// RiskConfig holds honeypot-detection tuning.
type RiskConfig struct {
	TimeoutMS           int                `mapstructure:"timeout_ms" validate:"required"`
	ProviderWeights      map[string]float64 `mapstructure:"provider_weights"`
	CacheTTLPassSec     int                `mapstructure:"cache_ttl_pass_seconds"`
	CacheTTLFailSec     int                `mapstructure:"cache_ttl_fail_seconds"`
	MediumRiskThreshold int                `mapstructure:"medium_risk_threshold"`
}

// SecurityConfig holds key-vault and session secrets.
type SecurityConfig struct {
	MasterSecret    string `mapstructure:"master_secret" validate:"required"`
	LeaseTTLSeconds int    `mapstructure:"lease_ttl_seconds"`
	ArgonWorkers    int    `mapstructure:"argon_workers"`
}

// PerformanceConfig holds HTTP/DB pool sizing.
type PerformanceConfig struct {
	HTTPPort     int    `mapstructure:"http_port"`
	DatabaseURL  string `mapstructure:"database_url" validate:"required"`
	MaxDBConns   int32  `mapstructure:"max_db_conns"`
}

// JupiterConfig configures the aggregator client the executor quotes and
// swaps through.
type JupiterConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
}

// NotifyConfig configures outbound execution-outcome delivery.
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Config is the root configuration object, assembled the way the
// retrieved Solana sniper bot's own config package assembles it: one
// struct per concern, loaded through viper with environment overrides.
type Config struct {
	Redis       RedisConfig       `mapstructure:"redis"`
	Solana      SolanaConfig      `mapstructure:"solana"`
	Trading     TradingConfig     `mapstructure:"trading"`
	Risk        RiskConfig        `mapstructure:"risk"`
	Security    SecurityConfig    `mapstructure:"security"`
	Performance PerformanceConfig `mapstructure:"performance"`
	Jupiter     JupiterConfig     `mapstructure:"jupiter"`
	Notify      NotifyConfig      `mapstructure:"notify"`
}

// GetDefault returns a Config populated with conservative defaults; Load
// overlays environment variables on top of these.
func GetDefault() *Config {
	return &Config{
		Redis: RedisConfig{Addr: "localhost:6379", DB: 0},
		Solana: SolanaConfig{
			RPCEndpoint: "https://api.mainnet-beta.solana.com",
			WSEndpoint:  "wss://api.mainnet-beta.solana.com",
			Commitment:  "confirmed",
		},
		Trading: TradingConfig{
			GlobalParallelism:    10,
			PerUserMaxConcurrent: 1,
			DedupWindowSeconds:   60,
		},
		Risk: RiskConfig{
			TimeoutMS:           4000,
			ProviderWeights:     map[string]float64{"goplus": 0.4, "honeypotis": 0.4, "onchain": 0.2},
			CacheTTLPassSec:     86400,
			CacheTTLFailSec:     3600,
			MediumRiskThreshold: 50,
		},
		Security: SecurityConfig{
			LeaseTTLSeconds: 900,
			ArgonWorkers:    2,
		},
		Performance: PerformanceConfig{
			HTTPPort:   8080,
			MaxDBConns: 10,
		},
		Jupiter: JupiterConfig{
			BaseURL:   "https://quote-api.jup.ag/v6",
			TimeoutMS: 3000,
		},
	}
}

// Load reads configuration from the environment (optionally a .env file)
// and validates the fields the engine cannot safely start without.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile) // missing .env is not fatal in prod
	}

	v := viper.New()
	v.SetEnvPrefix("SNIPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := GetDefault()

	bindAll(v, cfg)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func bindAll(v *viper.Viper, cfg *Config) {
	_ = v.BindEnv("redis.addr", "SNIPER_REDIS_ADDR")
	_ = v.BindEnv("redis.password", "SNIPER_REDIS_PASSWORD")
	_ = v.BindEnv("solana.rpc_endpoint", "SNIPER_SOLANA_RPC_ENDPOINT")
	_ = v.BindEnv("solana.ws_endpoint", "SNIPER_SOLANA_WS_ENDPOINT")
	_ = v.BindEnv("security.master_secret", "SNIPER_MASTER_SECRET")
	_ = v.BindEnv("performance.database_url", "SNIPER_DATABASE_URL")
	v.SetDefault("redis", cfg.Redis)
	v.SetDefault("solana", cfg.Solana)
	v.SetDefault("trading", cfg.Trading)
	v.SetDefault("risk", cfg.Risk)
	v.SetDefault("security", cfg.Security)
	v.SetDefault("performance", cfg.Performance)
	v.SetDefault("jupiter", cfg.Jupiter)
	v.SetDefault("notify", cfg.Notify)
}

func validate(cfg *Config) error {
	if cfg.Security.MasterSecret == "" {
		return fmt.Errorf("security.master_secret is required")
	}
	if len(cfg.Security.MasterSecret) < 32 {
		return fmt.Errorf("security.master_secret must be at least 32 characters")
	}
	unique := make(map[rune]struct{})
	for _, r := range cfg.Security.MasterSecret {
		unique[r] = struct{}{}
	}
	if len(unique) < 16 {
		return fmt.Errorf("security.master_secret must contain at least 16 distinct characters")
	}
	if cfg.Performance.DatabaseURL == "" {
		return fmt.Errorf("performance.database_url is required")
	}
	if cfg.Risk.TimeoutMS < 1000 || cfg.Risk.TimeoutMS > 30000 {
		return fmt.Errorf("risk.timeout_ms must be within [1000, 30000], got %d", cfg.Risk.TimeoutMS)
	}
	sum := 0.0
	for _, w := range cfg.Risk.ProviderWeights {
		sum += w
	}
	if len(cfg.Risk.ProviderWeights) > 0 && (sum < 0.99 || sum > 1.01) {
		return fmt.Errorf("risk.provider_weights must sum to 1.0, got %f", sum)
	}
	return nil
}

// LeaseTTL is a convenience accessor used by internal/lease.
func (c *Config) LeaseTTL() time.Duration {
	return time.Duration(c.Security.LeaseTTLSeconds) * time.Second
}

// HoneypotTimeout is a convenience accessor used by internal/honeypot.
func (c *Config) HoneypotTimeout() time.Duration {
	return time.Duration(c.Risk.TimeoutMS) * time.Millisecond
}

// HoneypotCacheTTLs returns the pass/fail cache durations for internal/honeypot.
func (c *Config) HoneypotCacheTTLs() (pass, fail time.Duration) {
	return time.Duration(c.Risk.CacheTTLPassSec) * time.Second, time.Duration(c.Risk.CacheTTLFailSec) * time.Second
}

// HoneypotMediumRiskThreshold is the riskScore boundary below which a
// cached verdict gets the long "pass" TTL instead of the short "fail" one.
func (c *Config) HoneypotMediumRiskThreshold() int {
	return c.Risk.MediumRiskThreshold
}

// JupiterTimeout is a convenience accessor used by internal/jupiter.
func (c *Config) JupiterTimeout() time.Duration {
	return time.Duration(c.Jupiter.TimeoutMS) * time.Millisecond
}
