package domain

import (
	"strings"
	"time"
)

// VerificationEntry is the pending one-time code for a single identity key.
// There is at most one live entry per key; storing a new code replaces it.
type VerificationEntry struct {
	IdentityKey string         `json:"email"`
	Code        string         `json:"code"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Attempts    int            `json:"attempts"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Expired reports whether the entry's deadline has passed at now.
func (e *VerificationEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// NormalizeEmail turns an email address into the identity key used for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SendCodeRequest is the body of POST /v1/verification/send.
type SendCodeRequest struct {
	Email    string         `json:"email" validate:"required,email"`
	Purpose  string         `json:"purpose" validate:"omitempty,max=200"`
	Metadata map[string]any `json:"metadata"`
}

// ConfirmCodeRequest is the body of POST /v1/verification/confirm.
type ConfirmCodeRequest struct {
	Email string `json:"email" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// Verification event types published after a send or a successful confirm.
const (
	EventCodeRequested = "verification.code_requested"
	EventCodeConfirmed = "verification.code_confirmed"
)

// VerificationEvent is the payload published to the events topic.
type VerificationEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Email      string    `json:"email"`
	Purpose    string    `json:"purpose,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
