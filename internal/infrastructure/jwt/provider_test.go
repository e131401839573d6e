package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linkedcreds-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeys(t *testing.T) *config.Config {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return &config.Config{
		AppName:           "LinkedCreds",
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		JWTExpiry:         time.Hour,
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p, err := NewProvider(writeKeys(t))
	require.NoError(t, err)

	tok, err := p.Sign("user@example.com", "email_code")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user@example.com", claims.Subject)
	assert.Equal(t, "email_code", claims.Source)
}

func TestVerify_Expired(t *testing.T) {
	p, err := NewProvider(writeKeys(t))
	require.NoError(t, err)
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := p.Sign("a@x.com", "google")
	require.NoError(t, err)

	_, err = p.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_ForeignKey(t *testing.T) {
	p1, err := NewProvider(writeKeys(t))
	require.NoError(t, err)
	p2, err := NewProvider(writeKeys(t))
	require.NoError(t, err)

	tok, err := p1.Sign("a@x.com", "email_code")
	require.NoError(t, err)
	_, err = p2.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_RejectsHMAC(t *testing.T) {
	p, err := NewProvider(writeKeys(t))
	require.NoError(t, err)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "a@x.com"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTPrivateKeyPath: "/nonexistent/key.pem"})
	assert.ErrorContains(t, err, "read private key")
}
