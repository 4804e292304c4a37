package discovery

import (
	"context"
	"strings"

	"github.com/rawblock/solana-sniper/internal/solanarpc"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// PumpfunSource detects new bonding-curve launches on pump.fun.
type PumpfunSource struct {
	chain *solanarpc.Client
}

func NewPumpfunSource(chain *solanarpc.Client) *PumpfunSource {
	return &PumpfunSource{chain: chain}
}

func (s *PumpfunSource) DexID() models.DexID { return models.DexPumpfun }

func (s *PumpfunSource) ProgramIDs() []string {
	return []string{"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"}
}

func (s *PumpfunSource) IsPoolInitLog(line string) bool {
	return strings.Contains(line, "Instruction: Create") || strings.Contains(line, "Program log: Initialize")
}

func (s *PumpfunSource) ParsePoolInit(ctx context.Context, sig string) (RawPoolDetection, error) {
	return parseAMMPoolInit(ctx, s.chain, sig)
}

// PumpswapSource detects pump.fun bonding curves that graduated to
// Pumpswap's AMM; a graduation event looks like a pool-init to discovery.
type PumpswapSource struct {
	chain *solanarpc.Client
}

func NewPumpswapSource(chain *solanarpc.Client) *PumpswapSource {
	return &PumpswapSource{chain: chain}
}

func (s *PumpswapSource) DexID() models.DexID { return models.DexPumpswap }

func (s *PumpswapSource) ProgramIDs() []string {
	return []string{"pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"}
}

func (s *PumpswapSource) IsPoolInitLog(line string) bool {
	return strings.Contains(line, "Instruction: CreatePool")
}

func (s *PumpswapSource) ParsePoolInit(ctx context.Context, sig string) (RawPoolDetection, error) {
	return parseAMMPoolInit(ctx, s.chain, sig)
}
