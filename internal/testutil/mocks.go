package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/udisondev/skirmish/internal/data"
)

// MemoryStore: in-memory data.Store для unit тестов.
// Не требует файлов или PostgreSQL. Ошибку загрузки можно задать по имени.
type MemoryStore struct {
	mu       sync.RWMutex
	sets     map[string]*data.RuleSet
	failures map[string]error
	loads    map[string]int
}

// NewMemoryStore создаёт store с заданными rule sets.
func NewMemoryStore(sets ...*data.RuleSet) *MemoryStore {
	s := &MemoryStore{
		sets:     make(map[string]*data.RuleSet, len(sets)),
		failures: make(map[string]error),
		loads:    make(map[string]int),
	}
	for _, rs := range sets {
		s.sets[rs.Name] = rs
	}
	return s
}

// Load возвращает rule set по имени.
func (s *MemoryStore) Load(ctx context.Context, name string) (*data.RuleSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads[name]++

	if err, ok := s.failures[name]; ok {
		return nil, fmt.Errorf("loading rule set %q: %w", name, err)
	}
	rs, ok := s.sets[name]
	if !ok {
		return nil, fmt.Errorf("loading rule set %q: %w", name, data.ErrNotFound)
	}
	return rs, nil
}

// Put добавляет или заменяет rule set.
func (s *MemoryStore) Put(rs *data.RuleSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[rs.Name] = rs
}

// Fail заставляет Load(name) возвращать err. nil снимает ошибку.
func (s *MemoryStore) Fail(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, name)
		return
	}
	s.failures[name] = err
}

// Loads возвращает число вызовов Load(name).
func (s *MemoryStore) Loads(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads[name]
}
