package honeypot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// GoPlusProvider queries the GoPlus Security token-security API.
type GoPlusProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewGoPlusProvider builds a provider rate limited to rps requests/sec.
func NewGoPlusProvider(rps float64) *GoPlusProvider {
	return &GoPlusProvider{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    "https://api.gopluslabs.io/api/v1/solana/token_security",
	}
}

func (p *GoPlusProvider) Name() string { return "goplus" }

type goplusResponse struct {
	Result map[string]struct {
		IsMintable       string `json:"mintable"`
		FreezeAuthority  string `json:"freezable"`
		IsHoneypot       string `json:"is_honeypot"`
		TransferFeeUpper string `json:"transfer_fee_upper"`
	} `json:"result"`
}

func (p *GoPlusProvider) Check(ctx context.Context, mint string) ProviderResult {
	if err := p.limiter.Wait(ctx); err != nil {
		return ProviderResult{Err: fmt.Errorf("goplus: rate wait: %w", err)}
	}

	url := fmt.Sprintf("%s?contract_addresses=%s", p.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProviderResult{Err: fmt.Errorf("goplus: new request: %w", err)}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ProviderResult{Err: fmt.Errorf("goplus: do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ProviderResult{Err: fmt.Errorf("goplus: status %d", resp.StatusCode)}
	}

	var body goplusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ProviderResult{Err: fmt.Errorf("goplus: decode: %w", err)}
	}

	data, ok := body.Result[mint]
	if !ok {
		return ProviderResult{Score: 0, Flags: nil}
	}

	var flags []string
	score := 0

	if data.IsHoneypot == "1" {
		return ProviderResult{Score: 100, Flags: []string{"goplus:is_honeypot"}, Conclusive: true}
	}
	if data.IsMintable == "1" {
		score += 40
		flags = append(flags, "goplus:mintable")
	}
	if data.FreezeAuthority == "1" {
		score += 30
		flags = append(flags, "goplus:freezable")
	}
	if data.TransferFeeUpper != "" && data.TransferFeeUpper != "0" {
		score += 20
		flags = append(flags, "goplus:transfer_fee")
	}

	return ProviderResult{Score: score, Flags: flags}
}
