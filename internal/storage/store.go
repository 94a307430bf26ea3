package storage

import (
	"context"
	"errors"
	"fmt"

	"moodtrack/internal/config"
	"moodtrack/internal/models"
)

// ErrStorageUnavailable marks failures of the underlying medium, including
// persisted data that can no longer be decoded.
var ErrStorageUnavailable = errors.New("storage unavailable")

// MoodStore persists the whole mood collection under a single logical key.
//
// LoadAll returns an empty, non-nil slice when nothing was ever written.
// SaveAll replaces the entire collection.
type MoodStore interface {
	LoadAll(ctx context.Context) ([]models.MoodEntry, error)
	SaveAll(ctx context.Context, entries []models.MoodEntry) error
	Close() error
}

// Open builds the backend selected in cfg and checks that it is reachable.
func Open(ctx context.Context, cfg *config.Config) (MoodStore, error) {
	op := "internal/storage/store.go Open"

	switch cfg.Backend {
	case config.BackendFile:
		return NewFileStorage(cfg.DataFile), nil
	case config.BackendMemory:
		return NewMemoryStorage(), nil
	case config.BackendRedis:
		return OpenRedisStorage(ctx, cfg.RedisURL, cfg.StoreKey)
	case config.BackendPostgres:
		return OpenPostgresStorage(ctx, cfg.PostgresDSN, cfg.StoreKey)
	default:
		return nil, fmt.Errorf("unknown backend %q in %s", cfg.Backend, op)
	}
}

func unavailable(op, what string, err error) error {
	return fmt.Errorf("%w: %s in %s: %w", ErrStorageUnavailable, what, op, err)
}

func emptyIfNil(entries []models.MoodEntry) []models.MoodEntry {
	if entries == nil {
		return []models.MoodEntry{}
	}
	return entries
}
