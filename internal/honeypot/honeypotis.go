package honeypot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// HoneypotIsProvider queries a honeypot.is-style simulation API that
// attempts a simulated buy+sell and reports whether the sell succeeds.
type HoneypotIsProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewHoneypotIsProvider builds a provider rate limited to rps requests/sec.
func NewHoneypotIsProvider(rps float64) *HoneypotIsProvider {
	return &HoneypotIsProvider{
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    "https://api.honeypot.is/v2/SolanaIsHoneypot",
	}
}

func (p *HoneypotIsProvider) Name() string { return "honeypotis" }

type honeypotisResponse struct {
	IsHoneypot  bool    `json:"isHoneypot"`
	SimSuccess  bool    `json:"simulationSuccess"`
	BuyTaxBps   int     `json:"buyTaxBps"`
	SellTaxBps  int     `json:"sellTaxBps"`
	FailReason  string  `json:"honeypotReason"`
}

func (p *HoneypotIsProvider) Check(ctx context.Context, mint string) ProviderResult {
	if err := p.limiter.Wait(ctx); err != nil {
		return ProviderResult{Err: fmt.Errorf("honeypotis: rate wait: %w", err)}
	}

	url := fmt.Sprintf("%s?address=%s", p.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ProviderResult{Err: fmt.Errorf("honeypotis: new request: %w", err)}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ProviderResult{Err: fmt.Errorf("honeypotis: do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ProviderResult{Err: fmt.Errorf("honeypotis: status %d", resp.StatusCode)}
	}

	var body honeypotisResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ProviderResult{Err: fmt.Errorf("honeypotis: decode: %w", err)}
	}

	if body.IsHoneypot {
		flags := []string{"honeypotis:simulated_sell_fails"}
		if body.FailReason != "" {
			flags = append(flags, "honeypotis:"+body.FailReason)
		}
		return ProviderResult{Score: 100, Flags: flags, Conclusive: true}
	}
	if !body.SimSuccess {
		return ProviderResult{Score: 50, Flags: []string{"honeypotis:simulation_inconclusive"}}
	}

	score := 0
	var flags []string
	if body.SellTaxBps > 2000 {
		score += 35
		flags = append(flags, "honeypotis:high_sell_tax")
	}
	if body.BuyTaxBps > 2000 {
		score += 15
		flags = append(flags, "honeypotis:high_buy_tax")
	}
	return ProviderResult{Score: score, Flags: flags}
}
