// Package txsigner is the executor's concrete Signer: it holds no state
// and no keys of its own, only the ability to deserialize the unsigned
// swap transaction an aggregator quote carries, sign it for the lease's
// wallet, and re-serialize it for broadcast.
package txsigner

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rawblock/solana-sniper/internal/jupiter"
)

// Signer implements executor.Signer using solana-go's transaction codec.
// The decrypted secret key never leaves the caller's stack frame it was
// passed in on; Signer only borrows it for the duration of one Sign call.
type Signer struct{}

// New builds a Signer. It carries no configuration: everything it needs
// arrives with each SignSwap call.
func New() *Signer {
	return &Signer{}
}

// SignSwap decodes quote.UnsignedTx, signs it with secretKey, and returns
// the signed transaction re-encoded as base64 for submission. priorityFee
// is not applied here: the aggregator already built the compute-budget
// instruction into the unsigned transaction at quote time.
func (s *Signer) SignSwap(ctx context.Context, secretKey []byte, quote jupiter.Quote, priorityFeeLamports uint64) (string, error) {
	if quote.UnsignedTx == "" {
		return "", fmt.Errorf("txsigner: quote carries no unsigned transaction")
	}

	tx, err := solana.TransactionFromBase64(quote.UnsignedTx)
	if err != nil {
		return "", fmt.Errorf("txsigner: parse unsigned tx: %w", err)
	}

	priv, err := privateKeyFromSeed(secretKey)
	if err != nil {
		return "", fmt.Errorf("txsigner: derive wallet key: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(priv.PublicKey()) {
			return &priv
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("txsigner: sign tx: %w", err)
	}

	signed, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("txsigner: marshal signed tx: %w", err)
	}
	return base64.StdEncoding.EncodeToString(signed), nil
}

// privateKeyFromSeed accepts either a raw 32-byte ed25519 seed or the
// 64-byte seed||pubkey form Solana CLI keypair files use.
func privateKeyFromSeed(secretKey []byte) (solana.PrivateKey, error) {
	switch len(secretKey) {
	case ed25519.PrivateKeySize: // 64: seed||pubkey, the Solana keypair-file form
		return solana.PrivateKey(secretKey), nil
	case ed25519.SeedSize: // 32: bare seed
		return solana.PrivateKey(ed25519.NewKeyFromSeed(secretKey)), nil
	default:
		return nil, fmt.Errorf("unexpected secret key length %d", len(secretKey))
	}
}
