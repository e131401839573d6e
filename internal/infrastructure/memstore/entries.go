package memstore

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/linkedcreds-api/internal/domain"
)

// EntryRepo keeps verification entries in a bounded LRU cache. When the
// cache is full the least recently used entry is evicted.
type EntryRepo struct {
	cache *lru.Cache[string, domain.VerificationEntry]
}

func NewEntryRepo(maxEntries int) (*EntryRepo, error) {
	cache, err := lru.New[string, domain.VerificationEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("memstore: %w", err)
	}
	return &EntryRepo{cache: cache}, nil
}

func (r *EntryRepo) Get(_ context.Context, key string) (*domain.VerificationEntry, error) {
	e, ok := r.cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("verification entry: %w", domain.ErrNotFound)
	}
	return &e, nil
}

func (r *EntryRepo) Put(_ context.Context, e *domain.VerificationEntry) error {
	r.cache.Add(e.IdentityKey, *e)
	return nil
}

func (r *EntryRepo) Delete(_ context.Context, key string) error {
	r.cache.Remove(key)
	return nil
}

func (r *EntryRepo) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	for _, k := range r.cache.Keys() {
		if e, ok := r.cache.Peek(k); ok && e.Expired(now) {
			r.cache.Remove(k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of cached entries, expired ones included.
func (r *EntryRepo) Len() int { return r.cache.Len() }
