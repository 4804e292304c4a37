package models

import "errors"

// Error taxonomy shared across components. Each executor step classifies
// its failure into one of these buckets so callers can decide whether a
// rate-limit decrement or a retry is appropriate.
var (
	ErrNotFound        = errors.New("not found")
	ErrLeaseExpired    = errors.New("automation lease expired")
	ErrLeaseMissing    = errors.New("automation lease not present")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrFilteredOut     = errors.New("event rejected by filter rules")
	ErrDuplicateEvent  = errors.New("event already processed")
	ErrHoneypotTimeout = errors.New("honeypot check timed out")
	ErrHoneypotRisk    = errors.New("honeypot risk above threshold")
	ErrQuoteFailed     = errors.New("quote request failed")
	ErrSwapFailed      = errors.New("swap submission failed")
	ErrConfirmTimeout  = errors.New("swap confirmation timed out")
	ErrInvalidConfig   = errors.New("invalid snipe config")
)
