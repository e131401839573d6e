package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/pkg/id"
)

const contentTypeJSON = "application/json"

var (
	driveURL = regexp.MustCompile(`https://drive\.google\.com/file/d/([a-zA-Z0-9_-]+)/view`)
	validID  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ObjectStore reads and writes raw objects. Get returns an error wrapping
// domain.ErrNotFound for a missing key.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Publisher pushes a signed credential to an external credential registry.
type Publisher interface {
	Publish(ctx context.Context, credential json.RawMessage, metadata map[string]any) (*domain.PublishedCredential, error)
}

type Service interface {
	// Get returns the raw JSON credential for fileID, which may also be a
	// Google Drive share URL.
	Get(ctx context.Context, fileID string) (json.RawMessage, error)
	Put(ctx context.Context, body []byte, uploaderEmail string) (*domain.CredentialArtifact, error)
	// PutAndPublish stores body like Put and then publishes it. A failed
	// publish is logged and leaves PublishedURI empty.
	PutAndPublish(ctx context.Context, body []byte, uploaderEmail string) (*domain.CredentialArtifact, error)
	Publish(ctx context.Context, req domain.PublishCredentialRequest, submitterEmail string) (*domain.PublishedCredential, error)
}

type service struct {
	store     ObjectStore
	publisher Publisher
	clock     clockwork.Clock
}

type Option func(*service)

// WithPublisher enables publishing. Without it Publish fails.
func WithPublisher(p Publisher) Option {
	return func(s *service) { s.publisher = p }
}

func NewService(store ObjectStore, clock clockwork.Clock, opts ...Option) Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &service{store: store, clock: clock}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractDriveID returns the file id of a Drive share link, or raw unchanged.
func ExtractDriveID(raw string) string {
	if m := driveURL.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

func objectKey(fileID string) string {
	return fmt.Sprintf("credentials/%s.json", fileID)
}

func (s *service) Get(ctx context.Context, fileID string) (json.RawMessage, error) {
	fileID = ExtractDriveID(strings.TrimSpace(fileID))
	if fileID == "" {
		return nil, fmt.Errorf("file ID is missing: %w", domain.ErrBadRequest)
	}
	if !validID.MatchString(fileID) {
		return nil, fmt.Errorf("malformed file ID: %w", domain.ErrBadRequest)
	}

	data, err := s.store.Get(ctx, objectKey(fileID))
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON body in file: %w", domain.ErrBadRequest)
	}
	return json.RawMessage(data), nil
}

func (s *service) Put(ctx context.Context, body []byte, uploaderEmail string) (*domain.CredentialArtifact, error) {
	if len(body) == 0 || !json.Valid(body) {
		return nil, fmt.Errorf("credential must be a JSON document: %w", domain.ErrBadRequest)
	}
	now := s.clock.Now().UTC()
	a := &domain.CredentialArtifact{
		ID:         id.NewAt(now),
		Size:       int64(len(body)),
		UploadedBy: uploaderEmail,
		CreatedAt:  now.Truncate(time.Second),
	}
	a.Object = objectKey(a.ID)
	if _, err := s.store.Put(ctx, a.Object, body, contentTypeJSON); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) PutAndPublish(ctx context.Context, body []byte, uploaderEmail string) (*domain.CredentialArtifact, error) {
	a, err := s.Put(ctx, body, uploaderEmail)
	if err != nil {
		return nil, err
	}
	res, err := s.publish(ctx, body, nil, uploaderEmail)
	if err != nil {
		slog.Warn("credential stored but not published", "id", a.ID, "err", err)
		return a, nil
	}
	a.PublishedURI = res.URI
	slog.Info("credential published", "id", a.ID, "uri", res.URI)
	return a, nil
}

func (s *service) Publish(ctx context.Context, req domain.PublishCredentialRequest, submitterEmail string) (*domain.PublishedCredential, error) {
	if !isJSONObject(req.Credential) {
		return nil, fmt.Errorf("credential must be a JSON object: %w", domain.ErrBadRequest)
	}
	res, err := s.publish(ctx, req.Credential, req.Metadata, submitterEmail)
	if err != nil {
		slog.Error("failed to publish credential", "submitter", submitterEmail, "err", err)
		return nil, err
	}
	return res, nil
}

func (s *service) publish(ctx context.Context, credential json.RawMessage, metadata map[string]any, submitterEmail string) (*domain.PublishedCredential, error) {
	if s.publisher == nil {
		return nil, fmt.Errorf("%w: no publisher configured", domain.ErrPublishFailed)
	}
	meta := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if _, ok := meta["submittedBy"]; !ok {
		meta["submittedBy"] = submitterEmail
	}
	res, err := s.publisher.Publish(ctx, credential, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPublishFailed, err)
	}
	return res, nil
}

func isJSONObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{' && json.Valid(b)
}
