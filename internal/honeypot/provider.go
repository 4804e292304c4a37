// Package honeypot is the Honeypot Detector (C5): parallel multi-provider
// and on-chain checks aggregated into a single risk verdict, with a
// Redis cache and a Postgres mirror of every non-cached evaluation.
package honeypot

import "context"

// ProviderResult is one provider's opinion on a mint.
type ProviderResult struct {
	Score      int // 0-100, higher is riskier
	Flags      []string
	Conclusive bool // true if this provider alone should force a 100
	Err        error
}

// Provider is implemented by each external honeypot-check API.
type Provider interface {
	Name() string
	Check(ctx context.Context, mint string) ProviderResult
}
