package discovery

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

func decodeSignature(sig string) (solana.Signature, error) {
	s, err := solana.SignatureFromBase58(sig)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("discovery: bad signature %q: %w", sig, err)
	}
	return s, nil
}

// extractBalanceDelta finds the token account whose balance increased the
// most between pre and post state and treats it as the pool's quote-side
// liquidity deposit, the same pre/post-balance-delta technique used
// throughout this codebase's swap/pool parsers.
func extractBalanceDelta(meta *rpc.TransactionMeta) (mint, poolAddress, quoteMint string, pre, post float64) {
	preByIndex := make(map[uint16]rpc.TokenBalance)
	for _, b := range meta.PreTokenBalances {
		preByIndex[b.AccountIndex] = b
	}

	var bestDelta float64
	for _, b := range meta.PostTokenBalances {
		amount := tokenAmountFloat(b.UiTokenAmount)
		p, ok := preByIndex[b.AccountIndex]
		prevAmount := 0.0
		if ok {
			prevAmount = tokenAmountFloat(p.UiTokenAmount)
		}
		delta := amount - prevAmount
		if delta > bestDelta {
			bestDelta = delta
			quoteMint = b.Mint.String()
			pre = prevAmount
			post = amount
		}
	}

	// The mint being listed is whichever post-balance account isn't the
	// quote mint's own account; absent richer instruction parsing we take
	// the first distinct mint observed, same best-effort posture as the
	// fallback path in this lineage's own swap parser.
	for _, b := range meta.PostTokenBalances {
		if b.Mint.String() != quoteMint {
			mint = b.Mint.String()
			break
		}
	}
	if len(meta.PostTokenBalances) > 0 && meta.PostTokenBalances[0].Owner != nil {
		poolAddress = meta.PostTokenBalances[0].Owner.String()
	}

	return mint, poolAddress, quoteMint, pre, post
}

func tokenAmountFloat(a rpc.UiTokenAmount) float64 {
	if a.UiAmount != nil {
		return *a.UiAmount
	}
	return 0
}
