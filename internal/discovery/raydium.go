package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/rawblock/solana-sniper/internal/solanarpc"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// RaydiumV4Source detects new pools on the Raydium AMM v4 program.
type RaydiumV4Source struct {
	chain *solanarpc.Client
}

func NewRaydiumV4Source(chain *solanarpc.Client) *RaydiumV4Source {
	return &RaydiumV4Source{chain: chain}
}

func (s *RaydiumV4Source) DexID() models.DexID { return models.DexRaydiumV4 }

func (s *RaydiumV4Source) ProgramIDs() []string {
	return []string{"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"}
}

func (s *RaydiumV4Source) IsPoolInitLog(line string) bool {
	return strings.Contains(line, "initialize2") || strings.Contains(line, "InitializeInstruction2")
}

func (s *RaydiumV4Source) ParsePoolInit(ctx context.Context, sig string) (RawPoolDetection, error) {
	return parseAMMPoolInit(ctx, s.chain, sig)
}

// RaydiumCLMMSource detects new pools on the Raydium concentrated-liquidity
// program; pool-init parsing shares the AMM balance-delta technique since
// the liquidity signal (pre/post quote-token balance) is the same shape.
type RaydiumCLMMSource struct {
	chain *solanarpc.Client
}

func NewRaydiumCLMMSource(chain *solanarpc.Client) *RaydiumCLMMSource {
	return &RaydiumCLMMSource{chain: chain}
}

func (s *RaydiumCLMMSource) DexID() models.DexID { return models.DexRaydiumCLMM }

func (s *RaydiumCLMMSource) ProgramIDs() []string {
	return []string{"CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"}
}

func (s *RaydiumCLMMSource) IsPoolInitLog(line string) bool {
	return strings.Contains(line, "CreatePool") || strings.Contains(line, "OpenPosition")
}

func (s *RaydiumCLMMSource) ParsePoolInit(ctx context.Context, sig string) (RawPoolDetection, error) {
	return parseAMMPoolInit(ctx, s.chain, sig)
}

// parseAMMPoolInit fetches the transaction and derives RawPoolDetection
// from token-balance pre/post deltas, the shared Raydium AMM-family shape.
func parseAMMPoolInit(ctx context.Context, chain *solanarpc.Client, sig string) (RawPoolDetection, error) {
	sigBytes, err := decodeSignature(sig)
	if err != nil {
		return RawPoolDetection{}, err
	}

	tx, err := chain.GetTransaction(ctx, sigBytes)
	if err != nil {
		return RawPoolDetection{}, fmt.Errorf("discovery: fetch tx %s: %w", sig, err)
	}
	if tx == nil || tx.Meta == nil {
		return RawPoolDetection{}, fmt.Errorf("discovery: empty tx meta for %s", sig)
	}

	mint, poolAddr, quoteMint, pre, post := extractBalanceDelta(tx.Meta)
	return RawPoolDetection{
		Mint:             mint,
		PoolAddress:      poolAddr,
		QuoteMint:        quoteMint,
		PreQuoteBalance:  pre,
		PostQuoteBalance: post,
		Signature:        sig,
	}, nil
}
