package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/linkedcreds-api/internal/domain"
	"github.com/linkedcreds-api/internal/pkg/otp"
)

// Repository persists verification entries by identity key. Get returns an
// error wrapping domain.ErrNotFound when no entry exists for the key.
type Repository interface {
	Get(ctx context.Context, key string) (*domain.VerificationEntry, error)
	Put(ctx context.Context, e *domain.VerificationEntry) error
	Delete(ctx context.Context, key string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// StoreConfig holds the entry lifetime and the confirm attempt ceiling.
type StoreConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

// VerifyResult is returned on a successful match.
type VerifyResult struct {
	Metadata map[string]any
}

// EntryStore issues and checks one-time codes on top of a Repository.
// Each read-modify-write runs under mu so attempts are never lost in-process.
type EntryStore struct {
	mu      sync.Mutex
	repo    Repository
	clock   clockwork.Clock
	cfg     StoreConfig
	newCode func() (string, error)
}

func NewEntryStore(repo Repository, clock clockwork.Clock, cfg StoreConfig) *EntryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EntryStore{repo: repo, clock: clock, cfg: cfg, newCode: otp.New}
}

// Store generates a code for key, replacing any pending entry, and returns it.
func (s *EntryStore) Store(ctx context.Context, key string, metadata map[string]any) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	now := s.clock.Now().UTC()
	e := &domain.VerificationEntry{
		IdentityKey: key,
		Code:        code,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.TTL),
		Metadata:    metadata,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Put(ctx, e); err != nil {
		return "", storeErr("put entry", err)
	}
	return code, nil
}

// Verify checks code against the pending entry for key. The entry is removed
// on a match, on expiry, and once the attempt ceiling is exceeded.
func (s *EntryStore) Verify(ctx context.Context, key, code string) (*VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.repo.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return nil, storeErr("get entry", err)
	}

	if e.Expired(s.clock.Now()) {
		if err := s.repo.Delete(ctx, key); err != nil {
			return nil, storeErr("delete expired entry", err)
		}
		return nil, domain.ErrCodeNotFound
	}

	e.Attempts++
	if e.Attempts > s.cfg.MaxAttempts {
		if err := s.repo.Delete(ctx, key); err != nil {
			return nil, storeErr("delete exhausted entry", err)
		}
		return nil, domain.ErrTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(e.Code), []byte(code)) != 1 {
		if err := s.repo.Put(ctx, e); err != nil {
			return nil, storeErr("record attempt", err)
		}
		return nil, domain.ErrInvalidCode
	}

	if err := s.repo.Delete(ctx, key); err != nil {
		return nil, storeErr("delete consumed entry", err)
	}
	return &VerifyResult{Metadata: e.Metadata}, nil
}

// PurgeExpired removes every entry whose deadline has passed.
func (s *EntryStore) PurgeExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.repo.PurgeExpired(ctx, s.clock.Now())
	if err != nil {
		return n, storeErr("purge expired", err)
	}
	return n, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrStore) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}

// Sweep purges expired entries every interval until ctx is done.
func (s *EntryStore) Sweep(ctx context.Context, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("verification sweep failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Debug("purged expired verification codes", "count", n)
			}
		}
	}
}
