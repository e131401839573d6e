package linkedtrust

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/linkedcreds-api/internal/config"
	"github.com/linkedcreds-api/internal/domain"
)

// maxResponseBytes caps how much of a LinkedTrust response is read.
const maxResponseBytes = 1 << 20

// Publisher posts OpenBadges v3 credentials to the LinkedTrust API.
type Publisher struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewPublisher(cfg *config.Config) *Publisher {
	return &Publisher{
		baseURL: strings.TrimRight(cfg.LinkedTrustAPIURL, "/"),
		apiKey:  cfg.LinkedTrustAPIKey,
		client:  &http.Client{Timeout: cfg.LinkedTrustTimeout},
	}
}

type publishRequest struct {
	Credential json.RawMessage `json:"credential"`
	Schema     string          `json:"schema"`
	Metadata   map[string]any  `json:"metadata"`
}

// Publish sends credential with display metadata and returns the URI
// LinkedTrust assigned to it.
func (p *Publisher) Publish(ctx context.Context, credential json.RawMessage, metadata map[string]any) (*domain.PublishedCredential, error) {
	body, err := json.Marshal(publishRequest{
		Credential: credential,
		Schema:     "OpenBadges",
		Metadata:   displayMetadata(metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("linkedtrust: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/credentials", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("linkedtrust: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedtrust: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("linkedtrust: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("linkedtrust: status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out domain.PublishedCredential
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("linkedtrust: decode response: %w", err)
	}
	return &out, nil
}

// displayMetadata fills in the tags, visibility and display hints that
// LinkedTrust uses to render an achievement badge. Caller values win,
// except tags, which are appended to the defaults.
func displayMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+3)
	for k, v := range in {
		out[k] = v
	}

	tags := []any{"achievement", "openbadges"}
	switch extra := in["tags"].(type) {
	case []any:
		tags = append(tags, extra...)
	case []string:
		for _, t := range extra {
			tags = append(tags, t)
		}
	}
	out["tags"] = tags

	if v, _ := in["visibility"].(string); v == "" {
		out["visibility"] = "public"
	}

	hints := map[string]any{
		"primaryDisplay": "achievement.name",
		"imageField":     "achievement.image",
		"badgeType":      "achievement",
		"showSkills":     true,
		"showCriteria":   true,
	}
	if custom, ok := in["displayHints"].(map[string]any); ok {
		for k, v := range custom {
			hints[k] = v
		}
	}
	out["displayHints"] = hints
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
