package oddscache

import (
	"context"
	"sync"
)

// DefaultMaxEntries limita o tamanho da camada em memória.
const DefaultMaxEntries = 1000

// MemoryTier é a camada quente do cache. Ao atingir o limite, a entrada
// mais antiga (por FetchedAt) é descartada.
type MemoryTier struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	maxEntries int
}

func NewMemoryTier(maxEntries int) *MemoryTier {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryTier{
		entries:    make(map[string]Entry),
		maxEntries: maxEntries,
	}
}

func (t *MemoryTier) Get(_ context.Context, key string) (Entry, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[key]
	return e, ok, nil
}

func (t *MemoryTier) Set(_ context.Context, key string, e Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.entries[key]; !exists && len(t.entries) >= t.maxEntries {
		t.evictOldestLocked()
	}
	t.entries[key] = e
	return nil
}

func (t *MemoryTier) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *MemoryTier) evictOldestLocked() {
	var (
		oldestKey string
		found     bool
	)
	var oldest Entry
	for k, e := range t.entries {
		if !found || e.FetchedAt.Before(oldest.FetchedAt) {
			oldestKey, oldest, found = k, e, true
		}
	}
	if found {
		delete(t.entries, oldestKey)
	}
}
