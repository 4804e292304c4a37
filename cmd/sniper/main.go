package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/internal/api"
	"github.com/rawblock/solana-sniper/internal/config"
	"github.com/rawblock/solana-sniper/internal/discovery"
	"github.com/rawblock/solana-sniper/internal/executor"
	"github.com/rawblock/solana-sniper/internal/filter"
	"github.com/rawblock/solana-sniper/internal/honeypot"
	"github.com/rawblock/solana-sniper/internal/jupiter"
	"github.com/rawblock/solana-sniper/internal/lease"
	"github.com/rawblock/solana-sniper/internal/notify"
	"github.com/rawblock/solana-sniper/internal/orchestrator"
	"github.com/rawblock/solana-sniper/internal/ratelimit"
	"github.com/rawblock/solana-sniper/internal/snipeconfig"
	"github.com/rawblock/solana-sniper/internal/solanarpc"
	"github.com/rawblock/solana-sniper/internal/store"
	"github.com/rawblock/solana-sniper/internal/telemetry"
	"github.com/rawblock/solana-sniper/internal/txsigner"
	"github.com/rawblock/solana-sniper/internal/vault"
	"github.com/rawblock/solana-sniper/pkg/models"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Info().Msg("starting Solana token-sniping engine")

	envFile := getEnvOrDefault("ENV_FILE", ".env")
	cfg, err := config.Load(envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	dbStore, err := store.Connect(ctx, cfg.Performance.DatabaseURL, cfg.Performance.MaxDBConns, log.With().Str("component", "store").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer dbStore.Close()
	if err := dbStore.InitSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}

	chain, err := solanarpc.Connect(ctx, cfg.Solana.RPCEndpoint, cfg.Solana.WSEndpoint, rpc.CommitmentType(cfg.Solana.Commitment))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to solana rpc/ws")
	}
	defer chain.Close()

	metrics := telemetry.New(prometheus.DefaultRegisterer)

	v := vault.New()
	defer v.Close()

	leases := lease.New(rdb, v, []byte(cfg.Security.MasterSecret))
	configs := snipeconfig.New(dbStore.Pool())
	limiter := ratelimit.New(rdb)
	dedup := filter.New(rdb)

	cacheTTLPass, cacheTTLFail := cfg.HoneypotCacheTTLs()
	detector, err := honeypot.New(
		rdb,
		[]honeypot.Provider{
			honeypot.NewGoPlusProvider(1),
			honeypot.NewHoneypotIsProvider(1),
			honeypot.NewOnchainLayer(chain),
		},
		cfg.Risk.ProviderWeights,
		cfg.HoneypotTimeout(),
		cacheTTLPass,
		cacheTTLFail,
		cfg.HoneypotMediumRiskThreshold(),
		honeypot.WithPostgresMirror(dbStore.UpsertHoneypotCheck),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build honeypot detector")
	}

	jup := jupiter.New(cfg.Jupiter.BaseURL, cfg.JupiterTimeout())
	signer := txsigner.New()
	notifier := notify.NewWebhookNotifier(cfg.Notify.WebhookURL, log.With().Str("component", "notify").Logger())

	exec := executor.New(leases, limiter, detector, jup, signer, dbStore, configs, notifier, log.With().Str("component", "executor").Logger(), metrics)

	orch := orchestrator.New(configs, leases, dedup, exec, cfg.Trading.GlobalParallelism, log.With().Str("component", "orchestrator").Logger(), metrics)
	for _, src := range discoverySources(chain) {
		tuning := discovery.DefaultTuning
		if src.DexID() == models.DexMeteora {
			tuning = discovery.MeteoraTuning
		}
		eng := discovery.NewEngine(src, chain.WS, tuning, log.With().Str("component", "discovery").Logger(), metrics)
		orch.AddEngine(eng)
	}

	warmup := orchestrator.NewWarmup(configs, log.With().Str("component", "warmup").Logger())
	if err := warmup.Run(ctx); err != nil {
		log.Warn().Err(err).Msg("startup warm-up pass failed, continuing cold")
	}

	wsHub := api.NewHub()
	go wsHub.Run()

	orchDone := make(chan struct{})
	go func() {
		orch.Run(ctx)
		close(orchDone)
	}()

	router := api.SetupRouter(leases, configs, dbStore, warmup, wsHub, log.With().Str("component", "api").Logger())
	srv := &http.Server{
		Addr:    ":" + portFor(cfg),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("engine listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutdown signal received, draining")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown did not complete cleanly")
	}
	select {
	case <-orchDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("in-flight executions did not drain before the shutdown deadline")
	}
}

// discoverySources builds every DEX Source the engine watches.
func discoverySources(chain *solanarpc.Client) []discovery.Source {
	return []discovery.Source{
		discovery.NewRaydiumV4Source(chain),
		discovery.NewRaydiumCLMMSource(chain),
		discovery.NewOrcaSource(chain),
		discovery.NewMeteoraSource(chain),
		discovery.NewPumpfunSource(chain),
		discovery.NewPumpswapSource(chain),
	}
}

func portFor(cfg *config.Config) string {
	if cfg.Performance.HTTPPort > 0 {
		return strconv.Itoa(cfg.Performance.HTTPPort)
	}
	return "8080"
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
