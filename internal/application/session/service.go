package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/infrastructure/google"
)

// Source recorded in session tokens issued after a Google sign-in.
const TokenSourceGoogle = "google"

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Payload, error)
}

type TokenSigner interface {
	Sign(email, source string) (string, error)
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type LoginResult struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Token string `json:"token"`
}

type Service interface {
	LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error)
}

type service struct {
	verifier GoogleVerifier
	signer   TokenSigner
}

func NewService(verifier GoogleVerifier, signer TokenSigner) Service {
	return &service{verifier: verifier, signer: signer}
}

func (s *service) LoginWithGoogle(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error) {
	p, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if p.Email == "" || !p.EmailVerified {
		return nil, fmt.Errorf("google account email is not verified: %w", domain.ErrUnauthorized)
	}

	email := domain.NormalizeEmail(p.Email)
	token, err := s.signer.Sign(email, TokenSourceGoogle)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	slog.Info("google sign-in", "email", email)
	return &LoginResult{Email: email, Name: p.Name, Token: token}, nil
}
