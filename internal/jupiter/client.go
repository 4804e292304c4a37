// Package jupiter is a thin client for the Jupiter aggregator's quote and
// swap endpoints, the DEX-router collaborator the executor delegates the
// actual trade to (SPEC_FULL Non-goals: no router is implemented here).
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Quote is a price quote for swapping inputMint -> outputMint. UnsignedTx
// is the base64-encoded, unsigned swap transaction the aggregator already
// built for this route; the executor's Signer only has to sign and
// re-serialize it, never assemble instructions itself.
type Quote struct {
	InputMint   string `json:"inputMint"`
	OutputMint  string `json:"outputMint"`
	InAmount    string `json:"inAmount"`
	OutAmount   string `json:"outAmount"`
	PriceImpact string `json:"priceImpactPct"`
	SlippageBps int    `json:"slippageBps"`
	UnsignedTx  string `json:"swapTransaction"`
	raw         json.RawMessage
}

// SwapResult is the outcome of submitting a swap transaction.
type SwapResult struct {
	Signature string `json:"signature"`
}

// Client talks to the Jupiter aggregator over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New builds a Client with a fixed request timeout. Each GetQuote and Swap
// call makes a single HTTP attempt; neither this client nor the executor
// retries a failed or timed-out request.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// GetQuote fetches a swap quote for the given input amount (in the input
// mint's smallest unit) and slippage tolerance.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (Quote, error) {
	url := fmt.Sprintf("%s/quote?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d",
		c.baseURL, inputMint, outputMint, amount, slippageBps)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("jupiter: new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("jupiter: quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Quote{}, fmt.Errorf("jupiter: quote status %d", resp.StatusCode)
	}

	var q Quote
	raw, err := readAll(resp)
	if err != nil {
		return Quote{}, fmt.Errorf("jupiter: read quote body: %w", err)
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quote{}, fmt.Errorf("jupiter: decode quote: %w", err)
	}
	q.raw = raw
	return q, nil
}

// Swap submits a swap transaction built from a prior quote. Actual
// transaction signing happens in the executor's Signer (which holds the
// decrypted key for the duration of this call only); this method only
// forwards the already-signed transaction bytes for broadcast.
func (c *Client) Swap(ctx context.Context, signedTxBase64 string) (SwapResult, error) {
	body, err := json.Marshal(map[string]string{"signedTransaction": signedTxBase64})
	if err != nil {
		return SwapResult{}, fmt.Errorf("jupiter: marshal swap body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return SwapResult{}, fmt.Errorf("jupiter: new swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SwapResult{}, fmt.Errorf("jupiter: swap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return SwapResult{}, fmt.Errorf("jupiter: swap status %d", resp.StatusCode)
	}

	var res SwapResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return SwapResult{}, fmt.Errorf("jupiter: decode swap result: %w", err)
	}
	return res, nil
}

func readAll(resp *http.Response) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
