package txsigner

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/rawblock/solana-sniper/internal/jupiter"
)

func buildUnsignedTxBase64(t *testing.T, payer solana.PublicKey) string {
	t.Helper()

	ix := system.NewTransferInstruction(1, payer, solana.SystemProgramID).Build()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(payer))
	if err != nil {
		t.Fatalf("build unsigned tx: %v", err)
	}

	raw, err := tx.ToBase64()
	if err != nil {
		t.Fatalf("marshal unsigned tx: %v", err)
	}
	return raw
}

func TestSignSwapSignsForWallet(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	payer := solana.PublicKeyFromBytes(pub)

	quote := jupiter.Quote{UnsignedTx: buildUnsignedTxBase64(t, payer)}

	s := New()
	signed, err := s.SignSwap(context.Background(), priv.Seed(), quote, 0)
	if err != nil {
		t.Fatalf("SignSwap() error = %v", err)
	}

	tx, err := solana.TransactionFromBase64(signed)
	if err != nil {
		t.Fatalf("decode signed tx: %v", err)
	}
	if len(tx.Signatures) == 0 || tx.Signatures[0] == (solana.Signature{}) {
		t.Fatalf("expected a non-zero signature on signed tx")
	}
}

func TestSignSwapRejectsEmptyQuote(t *testing.T) {
	s := New()
	if _, err := s.SignSwap(context.Background(), make([]byte, 32), jupiter.Quote{}, 0); err == nil {
		t.Fatalf("expected error for quote with no unsigned transaction")
	}
}

func TestPrivateKeyFromSeedRejectsBadLength(t *testing.T) {
	if _, err := privateKeyFromSeed([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for invalid secret key length")
	}
}
