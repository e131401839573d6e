package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/infrastructure/google"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*google.Payload, error) {
	args := m.Called(ctx, idToken)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(email, source string) (string, error) {
	args := m.Called(email, source)
	return args.String(0), args.Error(1)
}

func TestLoginWithGoogle(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", mock.Anything, "gtoken").Return(&google.Payload{Email: "Ada@Example.com", EmailVerified: true, Name: "Ada"}, nil)
	s := &mockSigner{}
	s.On("Sign", "ada@example.com", TokenSourceGoogle).Return("jwt", nil)

	res, err := NewService(v, s).LoginWithGoogle(context.Background(), GoogleLoginRequest{IDToken: "gtoken"})
	require.NoError(t, err)
	assert.Equal(t, &LoginResult{Email: "ada@example.com", Name: "Ada", Token: "jwt"}, res)
}

func TestLoginWithGoogle_UnverifiedEmail(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", mock.Anything, "gtoken").Return(&google.Payload{Email: "a@x.com"}, nil)
	s := &mockSigner{}

	_, err := NewService(v, s).LoginWithGoogle(context.Background(), GoogleLoginRequest{IDToken: "gtoken"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	s.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_InvalidToken(t *testing.T) {
	v := &mockVerifier{}
	v.On("Verify", mock.Anything, "bad").Return(nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized))

	_, err := NewService(v, &mockSigner{}).LoginWithGoogle(context.Background(), GoogleLoginRequest{IDToken: "bad"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
