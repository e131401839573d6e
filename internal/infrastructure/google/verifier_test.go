package google

import (
	"context"
	"errors"
	"testing"

	"github.com/linkedcreds-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestVerify_ExtractsClaims(t *testing.T) {
	v := NewVerifier("client-123")
	v.validate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "tok", token)
		assert.Equal(t, "client-123", audience)
		return &idtoken.Payload{
			Subject: "1089",
			Claims: map[string]interface{}{
				"email":          "user@example.com",
				"email_verified": true,
				"name":           "Ada",
			},
		}, nil
	}

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &Payload{Sub: "1089", Email: "user@example.com", EmailVerified: true, Name: "Ada"}, p)
}

func TestVerify_InvalidToken(t *testing.T) {
	v := NewVerifier("client-123")
	v.validate = func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("idtoken: token expired")
	}

	_, err := v.Verify(context.Background(), "tok")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerify_NormalizesEmailAndStringFlag(t *testing.T) {
	v := NewVerifier("client-123")
	v.validate = func(context.Context, string, string) (*idtoken.Payload, error) {
		return &idtoken.Payload{
			Subject: "1089",
			Claims:  map[string]interface{}{"email": " User@Example.COM", "email_verified": "true"},
		}, nil
	}

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", p.Email)
	assert.True(t, p.EmailVerified)
}
