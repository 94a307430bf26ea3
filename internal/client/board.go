package client

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"moodtrack/internal/models"
	"moodtrack/internal/usecases"
)

// API is the part of MoodClient a board needs.
type API interface {
	List(ctx context.Context) ([]models.MoodEntry, error)
	Create(ctx context.Context, req models.CreateMoodRequest) (models.MoodEntry, error)
	Delete(ctx context.Context, id int64) (models.MoodEntry, error)
}

// MoodBoard mirrors the last successful list in memory. Local state only
// changes after the server confirmed a write; failures leave it untouched.
type MoodBoard struct {
	api API
	log *logrus.Logger
	loc *time.Location

	mu      sync.RWMutex
	entries []models.MoodEntry
}

func NewMoodBoard(api API, log *logrus.Logger, loc *time.Location) *MoodBoard {
	if loc == nil {
		loc = time.Local
	}
	return &MoodBoard{api: api, log: log, loc: loc, entries: []models.MoodEntry{}}
}

func (b *MoodBoard) Entries() []models.MoodEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.MoodEntry{}, b.entries...)
}

func (b *MoodBoard) Refresh(ctx context.Context) error {
	entries, err := b.api.List(ctx)
	if err != nil {
		b.log.WithError(err).Error("Failed to fetch mood entries")
		return err
	}

	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
	return nil
}

func (b *MoodBoard) Add(ctx context.Context, req models.CreateMoodRequest) (models.MoodEntry, error) {
	saved, err := b.api.Create(ctx, req)
	if err != nil {
		b.log.WithError(err).Error("Failed to save mood entry")
		return models.MoodEntry{}, err
	}

	b.mu.Lock()
	b.entries = append([]models.MoodEntry{saved}, b.entries...)
	b.mu.Unlock()
	return saved, nil
}

func (b *MoodBoard) Remove(ctx context.Context, id int64) error {
	if _, err := b.api.Delete(ctx, id); err != nil {
		b.log.WithError(err).WithField("id", id).Error("Failed to delete mood entry")
		return err
	}

	b.mu.Lock()
	kept := make([]models.MoodEntry, 0, len(b.entries))
	for _, e := range b.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	b.entries = kept
	b.mu.Unlock()
	return nil
}

// Week derives the week chart from the local view, same rules as the server.
func (b *MoodBoard) Week(anchor time.Time) (models.Trend, error) {
	return usecases.BuildTrend(b.Entries(), models.PeriodWeek, anchor, b.loc)
}
