package discovery

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

func TestRaydiumV4IsPoolInitLog(t *testing.T) {
	s := &RaydiumV4Source{}
	if !s.IsPoolInitLog("Program log: ray_log: initialize2") {
		t.Fatalf("expected initialize2 line to match")
	}
	if s.IsPoolInitLog("Program log: ray_log: swap") {
		t.Fatalf("did not expect swap line to match")
	}
}

func TestPumpfunIsPoolInitLog(t *testing.T) {
	s := &PumpfunSource{}
	if !s.IsPoolInitLog("Program log: Instruction: Create") {
		t.Fatalf("expected Create line to match")
	}
}

func TestDeriveLiquidityClampsNegative(t *testing.T) {
	d := RawPoolDetection{PreQuoteBalance: 10, PostQuoteBalance: 5}
	if got := deriveLiquidity(d); got != 0 {
		t.Fatalf("deriveLiquidity() = %f, want 0 for negative delta", got)
	}
}

func TestDeriveLiquidityPositiveDelta(t *testing.T) {
	d := RawPoolDetection{PreQuoteBalance: 0, PostQuoteBalance: 42.5}
	if got := deriveLiquidity(d); got != 42.5 {
		t.Fatalf("deriveLiquidity() = %f, want 42.5", got)
	}
}

func amt(v float64) rpc.UiTokenAmount {
	return rpc.UiTokenAmount{UiAmount: &v}
}

func TestExtractBalanceDeltaPicksLargestIncrease(t *testing.T) {
	mintA := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	mintB := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	meta := &rpc.TransactionMeta{
		PreTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 0, Mint: mintA, UiTokenAmount: amt(0)},
			{AccountIndex: 1, Mint: mintB, UiTokenAmount: amt(5)},
		},
		PostTokenBalances: []rpc.TokenBalance{
			{AccountIndex: 0, Mint: mintA, UiTokenAmount: amt(100)},
			{AccountIndex: 1, Mint: mintB, UiTokenAmount: amt(6)},
		},
	}

	_, _, quoteMint, pre, post := extractBalanceDelta(meta)
	if quoteMint != mintA.String() {
		t.Fatalf("quoteMint = %s, want %s", quoteMint, mintA.String())
	}
	if pre != 0 || post != 100 {
		t.Fatalf("pre/post = %f/%f, want 0/100", pre, post)
	}
}
