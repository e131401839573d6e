package domain

import (
	"errors"
	"time"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")

	ErrValidation      = errors.New("validation failed")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrCodeNotFound    = errors.New("no code found or expired")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrDeliveryFailed  = errors.New("failed to send verification email")
	ErrStore           = errors.New("verification store unavailable")
	ErrPublishFailed   = errors.New("failed to publish credential")
)

// ValidationError carries a message that is safe to return to the client.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError { return &ValidationError{Msg: msg} }

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// RateLimitedError is returned when a limiter rejects a call. It keeps the
// decision so the transport layer can emit Retry-After and X-RateLimit headers.
type RateLimitedError struct {
	Decision RateLimitDecision
}

func (e *RateLimitedError) Error() string { return ErrRateLimited.Error() }

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// RetryAfter is the time left until the window resets, rounded up to whole seconds.
func (e *RateLimitedError) RetryAfter(now time.Time) time.Duration {
	d := e.Decision.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return (d + time.Second - 1) / time.Second * time.Second
}
