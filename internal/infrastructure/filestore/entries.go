package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/linkedcreds-api/internal/domain"
)

// EntryRepo keeps verification entries in a single JSON file keyed by the
// SHA-256 of the identity key. Every operation is a whole-file
// read-modify-write; writes land in a temp file that is renamed over the
// live one.
type EntryRepo struct {
	mu   sync.Mutex
	path string
}

func NewEntryRepo(path string) *EntryRepo {
	return &EntryRepo{path: path}
}

// HashKey returns the on-disk key for an identity key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (r *EntryRepo) Get(_ context.Context, key string) (*domain.VerificationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	e, ok := entries[HashKey(key)]
	if !ok {
		return nil, fmt.Errorf("verification entry: %w", domain.ErrNotFound)
	}
	return &e, nil
}

func (r *EntryRepo) Put(_ context.Context, e *domain.VerificationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	entries[HashKey(e.IdentityKey)] = *e
	return r.save(entries)
}

func (r *EntryRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}
	h := HashKey(key)
	if _, ok := entries[h]; !ok {
		return nil
	}
	delete(entries, h)
	return r.save(entries)
}

func (r *EntryRepo) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return 0, err
	}
	n := 0
	for h, e := range entries {
		if e.Expired(now) {
			delete(entries, h)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, r.save(entries)
}

// load reads the file. A missing file is an empty store; an unreadable one
// is logged and also treated as empty so the next write replaces it.
func (r *EntryRepo) load() (map[string]domain.VerificationEntry, error) {
	entries := map[string]domain.VerificationEntry{}
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", r.path, domain.ErrStore, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("verification file is corrupt, starting empty", "path", r.path, "err", err)
		return map[string]domain.VerificationEntry{}, nil
	}
	return entries, nil
}

func (r *EntryRepo) save(entries map[string]domain.VerificationEntry) (err error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w: %w", domain.ErrStore, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w: %w", dir, domain.ErrStore, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w: %w", domain.ErrStore, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Warn("failed to remove temp file", "path", tmp.Name(), "err", rmErr)
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w: %w", domain.ErrStore, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w: %w", domain.ErrStore, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w: %w", domain.ErrStore, err)
	}
	if err = os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("rename temp file: %w: %w", domain.ErrStore, err)
	}
	return nil
}
