package export

import (
	"context"
	"errors"
	"sync"
	"time"

	"link-analytics/internal/model"
)

// ErrArtifactNotFound reports a missing or expired export artifact.
var ErrArtifactNotFound = errors.New("export artifact not found")

// ArtifactStore keeps rendered exports under a TTL on behalf of callers.
// Expiry belongs to the store, never to ambient process state.
type ArtifactStore interface {
	Put(ctx context.Context, key string, artifact model.ExportArtifact, ttl time.Duration) error
	Get(ctx context.Context, key string) (model.ExportArtifact, error)
	SweepExpired(ctx context.Context) (int, error)
}

// MemoryStore is an in-process ArtifactStore for development and tests.
// Expired entries are dropped lazily on Get and explicitly by SweepExpired.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	entries map[string]model.ExportArtifact
}

// NewMemoryStore creates an empty in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		entries: make(map[string]model.ExportArtifact),
	}
}

// Put stores artifact under key with the given ttl.
func (s *MemoryStore) Put(_ context.Context, key string, artifact model.ExportArtifact, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact.ExpiresAt = s.now().Add(ttl)
	s.entries[key] = artifact
	return nil
}

// Get returns the artifact under key, or ErrArtifactNotFound when absent or
// expired.
func (s *MemoryStore) Get(_ context.Context, key string) (model.ExportArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.entries[key]
	if !ok {
		return model.ExportArtifact{}, ErrArtifactNotFound
	}
	if !artifact.ExpiresAt.After(s.now()) {
		delete(s.entries, key)
		return model.ExportArtifact{}, ErrArtifactNotFound
	}
	return artifact, nil
}

// SweepExpired removes every expired entry and reports how many were dropped.
func (s *MemoryStore) SweepExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	dropped := 0
	for key, artifact := range s.entries {
		if !artifact.ExpiresAt.After(now) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped, nil
}
