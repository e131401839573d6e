package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "memory", cfg.Verification.Store)
	assert.Equal(t, 10*time.Minute, cfg.Verification.TTL)
	assert.Equal(t, 3, cfg.Verification.MaxAttempts)
	assert.Equal(t, 1000, cfg.Verification.MaxEntries)
	assert.Zero(t, cfg.Verification.SweepInterval)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.RateLimit.SendLimit)
	assert.Equal(t, 1000, cfg.RateLimit.SendMaxTokens)
	assert.Equal(t, 5, cfg.RateLimit.ConfirmLimit)
	assert.Equal(t, 500, cfg.RateLimit.ConfirmMaxTokens)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "https://live.linkedtrust.us/api", cfg.LinkedTrustAPIURL)
	assert.Empty(t, cfg.LinkedTrustAPIKey)
	assert.Equal(t, 30*time.Second, cfg.LinkedTrustTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VERIFICATION_STORE", "file")
	t.Setenv("VERIFICATION_TTL", "30m")
	t.Setenv("VERIFICATION_SWEEP_INTERVAL", "90")
	t.Setenv("SEND_RATE_LIMIT", "3")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("DYNAMO_BOOTSTRAP", "false")

	cfg := Load()

	assert.Equal(t, "file", cfg.Verification.Store)
	assert.Equal(t, 30*time.Minute, cfg.Verification.TTL)
	assert.Equal(t, 90*time.Second, cfg.Verification.SweepInterval)
	assert.Equal(t, 3, cfg.RateLimit.SendLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.DynamoBootstrap)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("VERIFICATION_MAX_ATTEMPTS", "three")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("DYNAMO_BOOTSTRAP", "maybe")

	cfg := Load()

	assert.Equal(t, 3, cfg.Verification.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.DynamoBootstrap)
}
