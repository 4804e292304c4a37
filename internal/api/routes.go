package api

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/internal/filter"
	"github.com/rawblock/solana-sniper/internal/lease"
	"github.com/rawblock/solana-sniper/internal/orchestrator"
	"github.com/rawblock/solana-sniper/internal/snipeconfig"
	"github.com/rawblock/solana-sniper/internal/store"
	"github.com/rawblock/solana-sniper/internal/telemetry"
	"github.com/rawblock/solana-sniper/internal/vault"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// defaultLeaseTTL is used when an arm request omits ttlSeconds.
const defaultLeaseTTL = 15 * time.Minute

type APIHandler struct {
	leases  *lease.Store
	configs *snipeconfig.Store
	db      *store.PostgresStore
	warmup  *orchestrator.Warmup
	wsHub   *Hub
	log     zerolog.Logger
}

// SetupRouter wires every HTTP surface the engine exposes: health and
// metrics for service discovery, the execution stream for dashboards, and
// the protected config/lease/execution-history endpoints for operators.
func SetupRouter(leases *lease.Store, configs *snipeconfig.Store, dbStore *store.PostgresStore, warmup *orchestrator.Warmup, wsHub *Hub, logger zerolog.Logger) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var
	// Production: ALLOWED_ORIGINS=https://rawblock.net,https://www.rawblock.net
	// Development: ALLOWED_ORIGINS=http://localhost:3000 (or leave empty for *)
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			// Check if the request origin is in the allowed list
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		leases:  leases,
		configs: configs,
		db:      dbStore,
		warmup:  warmup,
		wsHub:   wsHub,
		log:     logger,
	}

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
		pub.GET("/warmup/progress", handler.handleWarmupProgress)
		pub.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// ── Protected endpoints (require bearer token if API_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	// Rate-limit protected endpoints to 60 req/min per IP (burst=10).
	auth.Use(NewRateLimiter(60, 10).Middleware())
	{
		auth.GET("/configs/:userId", handler.handleGetConfig)
		auth.PUT("/configs/:userId", handler.handleUpsertConfig)

		auth.POST("/leases/:userId", handler.handleArmLease)
		auth.DELETE("/leases/:userId", handler.handleRevokeLease)

		auth.GET("/executions/:userId", handler.handleListExecutions)
	}

	return r
}

// handleHealth reports overall engine status plus per-dependency
// connectivity, the same shape this codebase's lineage uses for its own
// admin health endpoint.
func (h *APIHandler) handleHealth(c *gin.Context) {
	components := map[string]bool{
		"postgres": h.db != nil,
		"leases":   h.leases != nil,
		"configs":  h.configs != nil,
	}
	snapshot := telemetry.Healthy(components)

	status := http.StatusOK
	if snapshot.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, snapshot)
}

// handleWarmupProgress reports the startup config-cache warm-up pass.
func (h *APIHandler) handleWarmupProgress(c *gin.Context) {
	if h.warmup == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "warmup not configured"})
		return
	}
	c.JSON(http.StatusOK, h.warmup.GetProgress())
}

// handleGetConfig returns a user's SnipeConfig.
func (h *APIHandler) handleGetConfig(c *gin.Context) {
	userID := c.Param("userId")
	cfg, err := h.configs.Get(c.Request.Context(), userID)
	if err != nil {
		if err == models.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no config for user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// handleUpsertConfig creates or replaces a user's SnipeConfig.
// PUT /api/v1/configs/:userId
func (h *APIHandler) handleUpsertConfig(c *gin.Context) {
	userID := c.Param("userId")

	var cfg models.SnipeConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cfg.UserID = userID

	if err := filter.ValidateConfig(cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.configs.Upsert(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// handleArmLease decodes a base58-encoded wallet secret key from the
// request body and stores it as a short-lived automation lease. The
// decoded key is zeroed as soon as the lease store has re-sealed it.
// POST /api/v1/leases/:userId { "walletId": "...", "secretKey": "base58...", "ttlSeconds": 900 }
func (h *APIHandler) handleArmLease(c *gin.Context) {
	userID := c.Param("userId")

	var req struct {
		WalletID   string `json:"walletId"`
		SecretKey  string `json:"secretKey"`
		TTLSeconds int    `json:"ttlSeconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.WalletID == "" || req.SecretKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletId and secretKey are required"})
		return
	}

	secretKey, err := base58.Decode(req.SecretKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secretKey is not valid base58"})
		return
	}
	defer vault.Zero(secretKey)

	ttl := defaultLeaseTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	if err := h.leases.Store(c.Request.Context(), userID, req.WalletID, secretKey, ttl); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to arm automation lease")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "armed", "expiresInSeconds": int(ttl.Seconds())})
}

// handleRevokeLease immediately disarms a user's automation lease.
func (h *APIHandler) handleRevokeLease(c *gin.Context) {
	userID := c.Param("userId")
	if err := h.leases.Revoke(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

// handleListExecutions paginates a user's execution history, most recent first.
func (h *APIHandler) handleListExecutions(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not connected"})
		return
	}
	userID := c.Param("userId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	executions, err := h.db.ListExecutions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": executions, "limit": limit, "offset": offset})
}
