// Package discovery is the Discovery Sources component (C6): one Source
// per DEX/launchpad, sharing a baseEngine that subscribes to program logs,
// dedups in-flight signatures, fetches+parses full transactions on a
// bounded worker pool, and reconnects with exponential backoff.
package discovery

import (
	"context"
	"time"

	"github.com/rawblock/solana-sniper/pkg/models"
)

// RawPoolDetection is the DEX-specific parse of a pool-init transaction,
// before liquidity/market-cap derivation.
type RawPoolDetection struct {
	Mint            string
	PoolAddress     string
	QuoteMint       string
	PreQuoteBalance float64
	PostQuoteBalance float64
	Signature       string
	Slot            uint64
}

// Source is implemented once per DEX. ProgramIDs lists the on-chain
// programs to subscribe to; IsPoolInitLog filters a single log line
// before the engine pays for a full transaction fetch; ParsePoolInit
// extracts the DEX-specific pool-init fields from the fetched transaction.
type Source interface {
	DexID() models.DexID
	ProgramIDs() []string
	IsPoolInitLog(line string) bool
	ParsePoolInit(ctx context.Context, sig string) (RawPoolDetection, error)
}

// Tuning holds the per-source concurrency knobs SPEC_FULL assigns.
type Tuning struct {
	Concurrency    int
	QueueSize      int
	FetchSpacing   time.Duration
}

// DefaultTuning is used by every DEX source except Meteora.
var DefaultTuning = Tuning{Concurrency: 4, QueueSize: 1000}

// MeteoraTuning reflects Meteora's stricter public-RPC rate posture.
var MeteoraTuning = Tuning{Concurrency: 2, QueueSize: 5000, FetchSpacing: 200 * time.Millisecond}
