package discovery

import (
	"context"
	"strings"

	"github.com/rawblock/solana-sniper/internal/solanarpc"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// OrcaSource detects new whirlpools on Orca's concentrated-liquidity program.
type OrcaSource struct {
	chain *solanarpc.Client
}

func NewOrcaSource(chain *solanarpc.Client) *OrcaSource {
	return &OrcaSource{chain: chain}
}

func (s *OrcaSource) DexID() models.DexID { return models.DexOrca }

func (s *OrcaSource) ProgramIDs() []string {
	return []string{"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"}
}

func (s *OrcaSource) IsPoolInitLog(line string) bool {
	return strings.Contains(line, "InitializePool") || strings.Contains(line, "InitializeConfig")
}

func (s *OrcaSource) ParsePoolInit(ctx context.Context, sig string) (RawPoolDetection, error) {
	return parseAMMPoolInit(ctx, s.chain, sig)
}
