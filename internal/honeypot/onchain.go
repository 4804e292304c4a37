package honeypot

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/rawblock/solana-sniper/internal/solanarpc"
)

// OnchainLayer inspects a mint's on-chain authorities directly: a live
// mint or freeze authority is a conclusive rug/freeze vector regardless of
// what any off-chain provider says.
type OnchainLayer struct {
	client *solanarpc.Client
}

// NewOnchainLayer builds a layer over an existing chain client.
func NewOnchainLayer(client *solanarpc.Client) *OnchainLayer {
	return &OnchainLayer{client: client}
}

func (o *OnchainLayer) Name() string { return "onchain" }

// mintLayout mirrors the leading fields of the SPL token Mint account the
// way the engine needs them: mint authority presence and freeze authority
// presence (COption<Pubkey> tags), skipping supply/decimals since we only
// need the authority flags here.
type mintLayout struct {
	MintAuthorityOption   uint32
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         bool
	FreezeAuthorityOption uint32
	FreezeAuthority       solana.PublicKey
}

func (o *OnchainLayer) Check(ctx context.Context, mint string) ProviderResult {
	pubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return ProviderResult{Err: err}
	}

	info, err := o.client.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return ProviderResult{Err: err}
	}
	if info == nil || info.Value == nil {
		return ProviderResult{Err: errAccountNotFound(mint)}
	}

	data := info.Value.Data.GetBinary()
	if len(data) < 82 {
		return ProviderResult{Err: errMalformedMint(mint)}
	}

	var layout mintLayout
	layout.MintAuthorityOption = u32le(data[0:4])
	copy(layout.MintAuthority[:], data[4:36])
	layout.FreezeAuthorityOption = u32le(data[46:50])
	copy(layout.FreezeAuthority[:], data[50:82])

	var flags []string
	conclusive := false
	score := 0

	if layout.MintAuthorityOption != 0 {
		flags = append(flags, "onchain:mint_authority_active")
		score += 60
		conclusive = true
	}
	if layout.FreezeAuthorityOption != 0 {
		flags = append(flags, "onchain:freeze_authority_active")
		score += 60
		conclusive = true
	}

	if conclusive {
		return ProviderResult{Score: 100, Flags: flags, Conclusive: true}
	}
	return ProviderResult{Score: score, Flags: flags}
}

func u32le(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

type errString string

func (e errString) Error() string { return string(e) }

func errAccountNotFound(mint string) error { return errString("onchain: account not found: " + mint) }
func errMalformedMint(mint string) error   { return errString("onchain: malformed mint account: " + mint) }
