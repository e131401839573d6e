package linkedtrust

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linkedcreds-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(url, key string) *Publisher {
	return NewPublisher(&config.Config{
		LinkedTrustAPIURL:  url + "/",
		LinkedTrustAPIKey:  key,
		LinkedTrustTimeout: 5 * time.Second,
	})
}

func TestPublish_PostsCredentialWithDisplayMetadata(t *testing.T) {
	var got publishRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/credentials", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uri":"https://live.linkedtrust.us/claims/42","claim":{"id":42}}`))
	}))
	defer srv.Close()

	res, err := newTestPublisher(srv.URL, "secret").Publish(context.Background(),
		json.RawMessage(`{"type":["VerifiableCredential","OpenBadgeCredential"]}`),
		map[string]any{"submittedBy": "user@example.com", "tags": []any{"skill"}})
	require.NoError(t, err)

	assert.Equal(t, "https://live.linkedtrust.us/claims/42", res.URI)
	assert.JSONEq(t, `{"id":42}`, string(res.Claim))

	assert.Equal(t, "OpenBadges", got.Schema)
	assert.JSONEq(t, `{"type":["VerifiableCredential","OpenBadgeCredential"]}`, string(got.Credential))
	assert.Equal(t, "user@example.com", got.Metadata["submittedBy"])
	assert.Equal(t, []any{"achievement", "openbadges", "skill"}, got.Metadata["tags"])
	assert.Equal(t, "public", got.Metadata["visibility"])
	hints, ok := got.Metadata["displayHints"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "achievement.name", hints["primaryDisplay"])
	assert.Equal(t, true, hints["showCriteria"])
}

func TestPublish_NoAPIKeyNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"uri":"u"}`))
	}))
	defer srv.Close()

	_, err := newTestPublisher(srv.URL, "").Publish(context.Background(), json.RawMessage(`{}`), nil)
	require.NoError(t, err)
}

func TestPublish_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	_, err := newTestPublisher(srv.URL, "").Publish(context.Background(), json.RawMessage(`{}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "linkedtrust: status 422")
	assert.Less(t, len(err.Error()), 300)
}

func TestPublish_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := newTestPublisher(srv.URL, "").Publish(context.Background(), json.RawMessage(`{}`), nil)
	assert.ErrorContains(t, err, "linkedtrust: decode response")
}

func TestPublish_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"uri":"u"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPublisher(srv.URL, "").Publish(ctx, json.RawMessage(`{}`), nil)
	assert.ErrorContains(t, err, "linkedtrust: send request")
}

func TestDisplayMetadata_CallerOverrides(t *testing.T) {
	out := displayMetadata(map[string]any{
		"visibility":   "private",
		"displayHints": map[string]any{"badgeType": "skill"},
		"tags":         []string{"employment"},
	})
	assert.Equal(t, "private", out["visibility"])
	assert.Equal(t, []any{"achievement", "openbadges", "employment"}, out["tags"])
	hints := out["displayHints"].(map[string]any)
	assert.Equal(t, "skill", hints["badgeType"])
	assert.Equal(t, "achievement.image", hints["imageField"])
}
