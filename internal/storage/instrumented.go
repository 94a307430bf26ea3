package storage

import (
	"context"
	"time"

	"moodtrack/internal/metrics"
	"moodtrack/internal/models"
)

type instrumentedStore struct {
	next    MoodStore
	backend string
	m       *metrics.Metrics
}

// Instrument wraps store so every load and save is counted and timed.
func Instrument(store MoodStore, backend string, m *metrics.Metrics) MoodStore {
	return &instrumentedStore{next: store, backend: backend, m: m}
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.m.StoreOps.WithLabelValues(s.backend, op, result).Inc()
	s.m.StoreDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) LoadAll(ctx context.Context) ([]models.MoodEntry, error) {
	start := time.Now()
	entries, err := s.next.LoadAll(ctx)
	s.observe("load", start, err)
	return entries, err
}

func (s *instrumentedStore) SaveAll(ctx context.Context, entries []models.MoodEntry) error {
	start := time.Now()
	err := s.next.SaveAll(ctx, entries)
	s.observe("save", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
