package honeypot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rawblock/solana-sniper/pkg/models"
)

// Detector runs every registered Provider (and the on-chain layer) in
// parallel and composites their verdicts into a single HoneypotResult,
// the same weighted-signal-with-conclusive-override composition this
// codebase's lineage uses for real-time transaction risk scoring.
type Detector struct {
	providers           []Provider
	weights             map[string]float64
	rdb                 *redis.Client
	cacheTTLPass        time.Duration
	cacheTTLFail        time.Duration
	timeout             time.Duration
	mediumRiskThreshold int
	mirror              func(ctx context.Context, r models.HoneypotCheck) error
}

// Option configures optional Detector behavior.
type Option func(*Detector)

// WithPostgresMirror registers a callback invoked on every non-cache-hit
// evaluation so the corpus of analyzed mints survives a restart.
func WithPostgresMirror(fn func(ctx context.Context, r models.HoneypotCheck) error) Option {
	return func(d *Detector) { d.mirror = fn }
}

// New builds a Detector. weights must sum to ~1.0 across every provider's
// Name(); validated here rather than trusted from config. mediumRiskThreshold
// is the riskScore boundary below which a cached verdict gets the long
// "pass" TTL instead of the short "fail" one.
func New(rdb *redis.Client, providers []Provider, weights map[string]float64, timeout, cacheTTLPass, cacheTTLFail time.Duration, mediumRiskThreshold int, opts ...Option) (*Detector, error) {
	sum := 0.0
	for _, p := range providers {
		w, ok := weights[p.Name()]
		if !ok {
			return nil, fmt.Errorf("honeypot: missing weight for provider %q", p.Name())
		}
		sum += w
	}
	if len(providers) > 0 && (sum < 0.99 || sum > 1.01) {
		return nil, fmt.Errorf("honeypot: provider weights must sum to 1.0, got %f", sum)
	}

	d := &Detector{
		providers:           providers,
		weights:             weights,
		rdb:                 rdb,
		cacheTTLPass:        cacheTTLPass,
		cacheTTLFail:        cacheTTLFail,
		timeout:             timeout,
		mediumRiskThreshold: mediumRiskThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func cacheKey(mint string) string { return fmt.Sprintf("honeypot:%s", mint) }

// Detect returns the cached verdict for mint if present, otherwise runs
// every provider in parallel under the configured timeout, aggregates,
// caches, and mirrors the result.
func (d *Detector) Detect(ctx context.Context, mint string) (models.HoneypotResult, error) {
	if cached, ok := d.fromCache(ctx, mint); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	results := make([]ProviderResult, len(d.providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range d.providers {
		i, p := i, p
		g.Go(func() error {
			results[i] = p.Check(gctx, mint)
			return nil
		})
	}
	_ = g.Wait()

	// Every provider's result carries its own Err rather than failing the
	// errgroup, so a screen that never answered (overall timeout, or every
	// provider individually erroring) must be caught explicitly here —
	// otherwise it silently aggregates to a zero-confidence, zero-risk
	// verdict and the caller buys through an honeypot screen that never ran.
	if ctx.Err() != nil {
		return models.HoneypotResult{}, errors.New("Honeypot analysis error: timeout")
	}
	answered := 0
	for _, r := range results {
		if r.Err == nil {
			answered++
		}
	}
	if len(d.providers) > 0 && answered == 0 {
		return models.HoneypotResult{}, errors.New("Honeypot analysis error: all providers failed")
	}

	result := d.aggregate(mint, results)

	if err := d.toCache(ctx, result); err != nil {
		return result, fmt.Errorf("honeypot: cache write: %w", err)
	}
	if d.mirror != nil {
		mirrorErr := d.mirror(ctx, models.HoneypotCheck{
			Mint: result.Mint, RiskScore: result.RiskScore, Confidence: result.Confidence,
			Flags: result.Flags, Conclusive: result.Conclusive, EvaluatedAt: result.EvaluatedAt,
		})
		if mirrorErr != nil {
			return result, fmt.Errorf("honeypot: mirror: %w", mirrorErr)
		}
	}

	return result, nil
}

// aggregate composites provider results: a single conclusive signal
// forces score=100; otherwise the weighted sum of non-error scores is
// clamped to [0,100], flags are the union, and confidence is the
// percentage (0-100) of providers that answered without error.
func (d *Detector) aggregate(mint string, results []ProviderResult) models.HoneypotResult {
	var flags []string
	weightedSum := 0.0
	answered := 0
	conclusive := false

	for i, r := range results {
		name := d.providers[i].Name()
		if r.Err != nil {
			continue
		}
		answered++
		flags = append(flags, r.Flags...)
		if r.Conclusive {
			conclusive = true
		}
		weightedSum += float64(r.Score) * d.weights[name]
	}

	score := int(weightedSum + 0.5)
	if conclusive {
		score = 100
	}
	score = clamp(score, 0, 100)

	confidence := 0.0
	if len(results) > 0 {
		confidence = float64(answered) / float64(len(results)) * 100
	}

	return models.HoneypotResult{
		Mint:        mint,
		RiskScore:   score,
		Confidence:  confidence,
		Flags:       flags,
		Conclusive:  conclusive,
		EvaluatedAt: time.Now(),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (d *Detector) fromCache(ctx context.Context, mint string) (models.HoneypotResult, bool) {
	raw, err := d.rdb.Get(ctx, cacheKey(mint)).Bytes()
	if err != nil {
		return models.HoneypotResult{}, false
	}
	var r models.HoneypotResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return models.HoneypotResult{}, false
	}
	return r, true
}

func (d *Detector) toCache(ctx context.Context, r models.HoneypotResult) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	ttl := d.cacheTTLFail
	if r.RiskScore < d.mediumRiskThreshold {
		ttl = d.cacheTTLPass
	}
	return d.rdb.Set(ctx, cacheKey(r.Mint), raw, ttl).Err()
}
