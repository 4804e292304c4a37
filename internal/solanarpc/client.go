// Package solanarpc wraps gagliardetto/solana-go's RPC and websocket
// clients with the connect/verify/retry shape this codebase's Bitcoin RPC
// client used, adapted to Solana's commitment levels and account model.
package solanarpc

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// Client bundles the JSON-RPC and websocket connections the engine needs:
// account/transaction reads on RPC, log/program subscriptions on WS.
type Client struct {
	RPC        *rpc.Client
	WS         *ws.Client
	Commitment rpc.CommitmentType
}

// Connect dials both endpoints and verifies the RPC connection with a
// GetHealth call before returning, mirroring the teacher's
// connect-then-verify pattern.
func Connect(ctx context.Context, rpcEndpoint, wsEndpoint string, commitment rpc.CommitmentType) (*Client, error) {
	rpcClient := rpc.New(rpcEndpoint)

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rpcClient.GetHealth(verifyCtx); err != nil {
		return nil, fmt.Errorf("solanarpc: health check failed: %w", err)
	}

	wsClient, err := ws.Connect(ctx, wsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("solanarpc: ws connect failed: %w", err)
	}

	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}

	return &Client{RPC: rpcClient, WS: wsClient, Commitment: commitment}, nil
}

// Close releases the websocket connection.
func (c *Client) Close() {
	if c.WS != nil {
		c.WS.Close()
	}
}

// retryWithBackoff retries fetch with the 500ms/1s/2s backoff this
// codebase's lineage uses for RPC calls that commonly race eventual
// consistency just after submission (transaction lookups, fresh account
// reads right after a pool-init signature is seen).
func retryWithBackoff[T any](ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	delays := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	var lastErr error
	var zero T
	for attempt := 0; attempt <= len(delays); attempt++ {
		res, err := fetch(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt == len(delays) {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return zero, fmt.Errorf("solanarpc: retry exhausted: %w", lastErr)
}

// GetTransaction fetches a confirmed transaction by signature, retrying
// through the eventual-consistency window right after confirmation.
func (c *Client) GetTransaction(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	return retryWithBackoff(ctx, func(ctx context.Context) (*rpc.GetTransactionResult, error) {
		maxVersion := uint64(0)
		return c.RPC.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Commitment:                     c.Commitment,
			MaxSupportedTransactionVersion: &maxVersion,
		})
	})
}

// GetAccountInfo fetches account data for pubkey, retrying through the
// same eventual-consistency window as GetTransaction.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return retryWithBackoff(ctx, func(ctx context.Context) (*rpc.GetAccountInfoResult, error) {
		return c.RPC.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Commitment: c.Commitment,
		})
	})
}
