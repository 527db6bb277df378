package data

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachedStore memoises a backing Store. Concurrent loads of one name share
// a single backend call. Failures are not cached.
//
// Thread-safe: class assignment may be retried from the tick loop while the
// network side preloads.
type CachedStore struct {
	backend Store
	group   singleflight.Group

	mu      sync.RWMutex
	entries map[string]cachedEntry
}

type cachedEntry struct {
	rs     *RuleSet
	digest string
}

// NewCachedStore wraps backend.
func NewCachedStore(backend Store) *CachedStore {
	return &CachedStore{
		backend: backend,
		entries: make(map[string]cachedEntry),
	}
}

// Load returns the cached rule set or loads it once from the backend.
// The returned rule set is shared and must be treated as read-only.
func (s *CachedStore) Load(ctx context.Context, name string) (*RuleSet, error) {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if ok {
		return e.rs, nil
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		rs, err := s.backend.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		digest, err := Digest(rs)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.entries[name] = cachedEntry{rs: rs, digest: digest}
		s.mu.Unlock()

		slog.Debug("rule set cached", "name", name, "digest", digest[:12])
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RuleSet), nil
}

// Digest returns the content digest of a cached rule set.
func (s *CachedStore) Digest(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e.digest, ok
}

// Invalidate drops a cached rule set so the next Load hits the backend.
func (s *CachedStore) Invalidate(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
}
