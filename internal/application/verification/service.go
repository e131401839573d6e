package verification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/pkg/id"
	"github.com/linkedcreds-api/internal/pkg/validate"
)

// Source recorded in session tokens issued after a code is confirmed.
const TokenSourceEmailCode = "email_code"

// Limiter is a fixed-window rate limiter keyed by token.
type Limiter interface {
	Check(ctx context.Context, limit int, token string) (domain.RateLimitDecision, error)
}

// Mailer delivers an HTML email.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// EventPublisher announces verification events. Optional.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.VerificationEvent) error
}

// TokenSigner issues a session token for a verified email. Optional.
type TokenSigner interface {
	Sign(email, source string) (string, error)
}

type RequestCodeInput struct {
	Email    string
	Purpose  string
	Metadata map[string]any
	ClientIP string
}

type ConfirmCodeInput struct {
	Email string
	Code  string
}

type ConfirmResult struct {
	Email    string
	Metadata map[string]any
	Token    string
}

type Service interface {
	RequestCode(ctx context.Context, in RequestCodeInput) error
	ConfirmCode(ctx context.Context, in ConfirmCodeInput) (*ConfirmResult, error)
}

// Limits are the per-window ceilings for each scope.
type Limits struct {
	Send    int
	Confirm int
}

type ServiceDeps struct {
	Store          *EntryStore
	SendLimiter    Limiter
	ConfirmLimiter Limiter
	Limits         Limits
	Mailer         Mailer
	Events         EventPublisher
	Signer         TokenSigner
	Clock          clockwork.Clock
	AppName        string
	CodeTTL        time.Duration
}

type service struct {
	store          *EntryStore
	sendLimiter    Limiter
	confirmLimiter Limiter
	limits         Limits
	mailer         Mailer
	events         EventPublisher
	signer         TokenSigner
	clock          clockwork.Clock
	appName        string
	codeTTL        time.Duration
}

func NewService(d ServiceDeps) Service {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &service{
		store:          d.Store,
		sendLimiter:    d.SendLimiter,
		confirmLimiter: d.ConfirmLimiter,
		limits:         d.Limits,
		mailer:         d.Mailer,
		events:         d.Events,
		signer:         d.Signer,
		clock:          clock,
		appName:        d.AppName,
		codeTTL:        d.CodeTTL,
	}
}

func (s *service) RequestCode(ctx context.Context, in RequestCodeInput) error {
	email := domain.NormalizeEmail(in.Email)
	if !validate.Email(email) {
		return domain.NewValidationError("Valid email address is required")
	}
	req := domain.SendCodeRequest{Email: email, Purpose: in.Purpose, Metadata: in.Metadata}
	if err := validate.Struct(&req); err != nil {
		return err
	}

	token := in.ClientIP
	if token == "" {
		token = "unknown"
	}
	if err := s.admit(ctx, s.sendLimiter, s.limits.Send, token); err != nil {
		return err
	}

	code, err := s.store.Store(ctx, email, req.Metadata)
	if err != nil {
		return err
	}

	html, err := renderEmail(s.appName, req.Purpose, code, s.codeTTL)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	if err := s.mailer.SendEmail(ctx, email, emailSubject, html); err != nil {
		slog.Error("failed to send verification email", "email", email, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	slog.Info("verification code sent", "email", email, "purpose", req.Purpose)
	s.publish(ctx, domain.EventCodeRequested, email, req.Purpose)
	return nil
}

func (s *service) ConfirmCode(ctx context.Context, in ConfirmCodeInput) (*ConfirmResult, error) {
	email := domain.NormalizeEmail(in.Email)
	req := domain.ConfirmCodeRequest{Email: email, Code: in.Code}
	if err := validate.Struct(&req); err != nil {
		return nil, domain.NewValidationError("Email and verification code are required")
	}

	if err := s.admit(ctx, s.confirmLimiter, s.limits.Confirm, "VERIFY_"+email); err != nil {
		return nil, err
	}

	res, err := s.store.Verify(ctx, email, req.Code)
	if err != nil {
		slog.Info("verification code rejected", "email", email, "reason", err)
		return nil, err
	}

	// The code is already consumed here, so a signing failure only drops the token.
	out := &ConfirmResult{Email: email, Metadata: res.Metadata}
	if s.signer != nil {
		if out.Token, err = s.signer.Sign(email, TokenSourceEmailCode); err != nil {
			slog.Error("failed to sign session token", "email", email, "err", err)
			out.Token = ""
		}
	}

	slog.Info("verification code confirmed", "email", email)
	s.publish(ctx, domain.EventCodeConfirmed, email, "")
	return out, nil
}

// admit consumes one call from limiter. The consumption is never refunded.
func (s *service) admit(ctx context.Context, limiter Limiter, limit int, token string) error {
	d, err := limiter.Check(ctx, limit, token)
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}
	if !d.Allowed {
		slog.Warn("rate limit exceeded", "token", token, "limit", d.Limit)
		return &domain.RateLimitedError{Decision: d}
	}
	return nil
}

func (s *service) publish(ctx context.Context, typ, email, purpose string) {
	if s.events == nil {
		return
	}
	now := s.clock.Now().UTC()
	ev := domain.VerificationEvent{
		ID:         id.NewAt(now),
		Type:       typ,
		Email:      email,
		Purpose:    purpose,
		OccurredAt: now,
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish verification event", "type", typ, "err", err)
	}
}
