package domain

import (
	"encoding/json"
	"time"
)

// CredentialArtifact describes a raw credential document kept in object storage.
type CredentialArtifact struct {
	ID           string    `json:"id"`
	Object       string    `json:"object"`
	Size         int64     `json:"size"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created"`
	PublishedURI string    `json:"linkedTrustUri,omitempty"`
}

// PublishCredentialRequest is the body of POST /v1/credentials/publish.
type PublishCredentialRequest struct {
	Credential json.RawMessage `json:"credential" validate:"required"`
	Metadata   map[string]any  `json:"metadata"`
}

// PublishedCredential is what the LinkedTrust API returns for a published credential.
type PublishedCredential struct {
	URI        string          `json:"uri"`
	Claim      json.RawMessage `json:"claim,omitempty"`
	Credential json.RawMessage `json:"credential,omitempty"`
}
