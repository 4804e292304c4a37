package discovery

import (
	"context"
	"strings"

	"github.com/rawblock/solana-sniper/internal/solanarpc"
	"github.com/rawblock/solana-sniper/pkg/models"
)

// MeteoraSource detects new dynamic-vault and DLMM pools. Meteora is run
// at lower concurrency and a higher queue size (MeteoraTuning) since its
// public RPC posture tolerates fewer concurrent transaction fetches.
type MeteoraSource struct {
	chain *solanarpc.Client
}

func NewMeteoraSource(chain *solanarpc.Client) *MeteoraSource {
	return &MeteoraSource{chain: chain}
}

func (s *MeteoraSource) DexID() models.DexID { return models.DexMeteora }

func (s *MeteoraSource) ProgramIDs() []string {
	return []string{"Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB", "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"}
}

func (s *MeteoraSource) IsPoolInitLog(line string) bool {
	return strings.Contains(line, "InitializePermissionlessPool") || strings.Contains(line, "InitializeLbPair")
}

func (s *MeteoraSource) ParsePoolInit(ctx context.Context, sig string) (RawPoolDetection, error) {
	return parseAMMPoolInit(ctx, s.chain, sig)
}
