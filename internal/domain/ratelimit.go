package domain

import "time"

// RateLimitEntry is the fixed-window counter kept for one rate-limit token.
type RateLimitEntry struct {
	Token         string
	Count         int
	WindowResetAt time.Time
}

// RateLimitDecision is the outcome of a limiter check. A rejection is an
// ordinary result, not an error.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Count     int
	Remaining int
	ResetAt   time.Time
}
