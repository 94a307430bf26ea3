package storage

import (
	"context"
	"sync"

	"moodtrack/internal/models"
)

// MemoryStorage keeps the collection in process memory. Loads and saves copy
// the slice so callers never share backing arrays with the store.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []models.MoodEntry
}

func NewMemoryStorage(seed ...models.MoodEntry) *MemoryStorage {
	m := &MemoryStorage{}
	if len(seed) > 0 {
		m.entries = append([]models.MoodEntry(nil), seed...)
	}
	return m
}

func (m *MemoryStorage) LoadAll(ctx context.Context) ([]models.MoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.MoodEntry{}, m.entries...), nil
}

func (m *MemoryStorage) SaveAll(ctx context.Context, entries []models.MoodEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]models.MoodEntry{}, entries...)
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
