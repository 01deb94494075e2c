// Package history implements the optional per-sender bookkeeping store.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/llm-mail-triage/internal/core"
	"go.uber.org/zap"
)

// entry is one sender's recorded history
type entry struct {
	Category  core.Category
	SeenCount int
	LastSeen  time.Time
}

// MemoryStore is an in-memory implementation of the HistoryStore interface
type MemoryStore struct {
	entries map[string]*entry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory history store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Record notes that a sender's latest message landed in category
func (s *MemoryStore) Record(ctx context.Context, sender string, category core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sender]
	if !ok {
		e = &entry{}
		s.entries[sender] = e
	}
	e.Category = category
	e.SeenCount++
	e.LastSeen = time.Now()
	return nil
}

// List returns every recorded sender with its last category
func (s *MemoryStore) List(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.entries))
	for sender, e := range s.entries {
		out[sender] = e.Category.String()
	}
	return out, nil
}

// Clear drops all recorded history
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.logger.Debug("Cleared sender history")
	return nil
}
