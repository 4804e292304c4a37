// Package models holds the data shapes shared across the sniper engine:
// discovery events, per-user configuration, automation leases, honeypot
// verdicts, and the execution/position records persisted to Postgres.
package models

import "time"

// DexID identifies the source DEX/launchpad a pool was discovered on.
type DexID string

const (
	DexRaydiumV4   DexID = "raydium_v4"
	DexRaydiumCLMM DexID = "raydium_clmm"
	DexOrca        DexID = "orca"
	DexMeteora     DexID = "meteora"
	DexPumpfun     DexID = "pumpfun"
	DexPumpswap    DexID = "pumpswap"
)

// NewTokenEvent is emitted by a discovery.Source whenever a new pool/mint
// pair is observed on-chain.
type NewTokenEvent struct {
	EventID         string    `json:"eventId"`
	Source          DexID     `json:"source"`
	Mint            string    `json:"mint"`
	PoolAddress     string    `json:"poolAddress"`
	QuoteMint       string    `json:"quoteMint"`
	InitialLiqQuote float64   `json:"initialLiquidityQuote"`
	InitialLiqUSD   float64   `json:"initialLiquidityUsd"`
	MarketCapUSD    float64   `json:"marketCapUsd"`
	Signature       string    `json:"signature"`
	Slot            uint64    `json:"slot"`
	DetectedAt      time.Time `json:"detectedAt"`
}

// SnipeConfig is the per-user policy that gates and sizes automated buys.
type SnipeConfig struct {
	UserID              string    `json:"userId"`
	Enabled             bool      `json:"enabled"`
	Sources             []DexID   `json:"sources"`
	BuyAmountQuote      float64   `json:"buyAmountQuote"`
	SlippageBps         int       `json:"slippageBps"`
	PriorityFeeLamports uint64    `json:"priorityFeeLamports"`
	MinLiquidityUSD     float64   `json:"minLiquidityUsd"`
	MaxLiquidityUSD     float64   `json:"maxLiquidityUsd"`
	MinMarketCapUSD     float64   `json:"minMarketCapUsd"`
	MaxMarketCapUSD     float64   `json:"maxMarketCapUsd"`
	MinHolderCount      int       `json:"minHolderCount"`
	MaxHoneypotScore    int       `json:"maxHoneypotScore"`
	Whitelist           []string  `json:"whitelist"`
	MintBlacklist       []string  `json:"mintBlacklist"`
	MaxPerHour          int       `json:"maxPerHour"`
	MaxPerDay           int       `json:"maxPerDay"`
	DryRun              bool      `json:"dryRun"`
	NotifyOnSuccess     bool      `json:"notifyOnSuccess"`
	NotifyOnFailure     bool      `json:"notifyOnFailure"`
	LastAutomationAt    time.Time `json:"lastAutomationAt,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// AutomationLease is the short-lived, encrypted authorization that allows
// the executor to sign a swap on a user's behalf without holding their
// session key in memory between events.
type AutomationLease struct {
	UserID     string    `json:"userId"`
	WalletID   string    `json:"walletId"`
	Ciphertext []byte    `json:"ciphertext"`
	IV         []byte    `json:"iv"`
	AuthTag    []byte    `json:"authTag"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Expired reports whether the lease is no longer usable at t.
func (l AutomationLease) Expired(t time.Time) bool {
	return !t.Before(l.ExpiresAt)
}

// HoneypotResult is the aggregated verdict produced by the honeypot
// detector for a single mint.
type HoneypotResult struct {
	Mint        string    `json:"mint"`
	RiskScore   int       `json:"riskScore"` // 0-100, higher is riskier
	Confidence  float64   `json:"confidence"`
	Flags       []string  `json:"flags"`
	Conclusive  bool      `json:"conclusive"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// ExecutionState is the lifecycle state of a SnipeExecution.
type ExecutionState string

const (
	StatePending    ExecutionState = "PENDING"
	StateFiltering  ExecutionState = "FILTERING"
	StateChecking   ExecutionState = "CHECKING_HONEYPOT"
	StateQuoting    ExecutionState = "QUOTING"
	StateSwapping   ExecutionState = "SWAPPING"
	StateConfirming ExecutionState = "CONFIRMING"
	StateSucceeded  ExecutionState = "SUCCEEDED"
	StateSkipped    ExecutionState = "SKIPPED"
	StateFailed     ExecutionState = "FAILED"
)

// SnipeExecution records one attempt to act on a NewTokenEvent for one user.
type SnipeExecution struct {
	ExecutionID   string         `json:"executionId"`
	UserID        string         `json:"userId"`
	Mint          string         `json:"mint"`
	Source        DexID          `json:"source"`
	State         ExecutionState `json:"state"`
	SkipReason    string         `json:"skipReason,omitempty"`
	FailureReason string         `json:"failureReason,omitempty"`
	HoneypotScore int            `json:"honeypotScore,omitempty"`
	QuoteAmount   float64        `json:"quoteAmount,omitempty"`
	TokenAmount   float64        `json:"tokenAmount,omitempty"`
	TxSignature   string         `json:"txSignature,omitempty"`
	DryRun        bool           `json:"dryRun"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// User is an account that can own wallets and a SnipeConfig.
type User struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Wallet is a Solana keypair managed by the vault on behalf of a user.
type Wallet struct {
	WalletID  string    `json:"walletId"`
	UserID    string    `json:"userId"`
	PublicKey string    `json:"publicKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// SniperPosition is the fact of an opened position; its ongoing monitoring
// (take-profit/stop-loss) is an external collaborator's responsibility.
type SniperPosition struct {
	PositionID  string    `json:"positionId"`
	ExecutionID string    `json:"executionId"`
	UserID      string    `json:"userId"`
	Mint        string    `json:"mint"`
	TokenAmount float64   `json:"tokenAmount"`
	EntryPrice  float64   `json:"entryPrice"`
	OpenedAt    time.Time `json:"openedAt"`
}

// PositionMonitor is the latest observed state of a position; this repo
// only ever writes the initial row, an external monitor owns transitions.
type PositionMonitor struct {
	PositionID   string    `json:"positionId"`
	CurrentPrice float64   `json:"currentPrice"`
	PnLPercent   float64   `json:"pnlPercent"`
	Status       string    `json:"status"` // open/closed
	LastCheckAt  time.Time `json:"lastCheckAt"`
}

// HoneypotCheck mirrors the Redis-backed honeypot cache into Postgres so
// the evaluated corpus survives a process restart.
type HoneypotCheck struct {
	Mint        string    `json:"mint"`
	RiskScore   int       `json:"riskScore"`
	Confidence  float64   `json:"confidence"`
	Flags       []string  `json:"flags"`
	Conclusive  bool      `json:"conclusive"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}
