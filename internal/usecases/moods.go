package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"moodtrack/internal/metrics"
	"moodtrack/internal/models"
	"moodtrack/internal/storage"
)

var ErrNotFound = errors.New("mood entry not found")

// ValidationError lists the required fields a create payload is missing.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return e.Reason
}

// MoodService owns the read-modify-write cycle over a MoodStore.
//
// Writes are serialized by mu, so two concurrent creates or deletes cannot
// overwrite each other's save. Reads go straight to the store.
type MoodService struct {
	store   storage.MoodStore
	log     *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	loc     *time.Location

	mu     sync.Mutex
	lastID int64
}

type Option func(*MoodService)

func WithClock(now func() time.Time) Option {
	return func(s *MoodService) { s.now = now }
}

// WithLocation sets the location calendar days are resolved in.
func WithLocation(loc *time.Location) Option {
	return func(s *MoodService) { s.loc = loc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *MoodService) { s.metrics = m }
}

func NewMoodService(store storage.MoodStore, log *logrus.Logger, opts ...Option) *MoodService {
	s := &MoodService{
		store: store,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MoodService) Location() *time.Location {
	return s.loc
}

// Now is the service clock's current instant in the service location.
func (s *MoodService) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *MoodService) ListEntries(ctx context.Context) ([]models.MoodEntry, error) {
	op := "internal/usecases/moods.go ListEntries"

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("Failure to load entries in %s: %w", op, err)
	}
	return entries, nil
}

func validate(req models.CreateMoodRequest) error {
	var missing []string
	if strings.TrimSpace(req.Type) == "" {
		missing = append(missing, "type")
	}
	if req.MoodLevel == nil {
		missing = append(missing, "moodLevel")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(req.Time) == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// CreateEntry validates req, stamps it with an id and the current instant and
// puts it at the head of the collection.
func (s *MoodService) CreateEntry(ctx context.Context, req models.CreateMoodRequest) (models.MoodEntry, error) {
	op := "internal/usecases/moods.go CreateEntry"

	if err := validate(req); err != nil {
		return models.MoodEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return models.MoodEntry{}, fmt.Errorf("Failure to load entries in %s: %w", op, err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)

	entry := models.MoodEntry{
		ID:        s.nextID(now, entries),
		Type:      req.Type,
		MoodLevel: *req.MoodLevel,
		MoodEmoji: req.MoodEmoji,
		MoodLabel: req.MoodLabel,
		Date:      req.Date,
		Time:      req.Time,
		Timestamp: now,
	}

	if level, ok := models.LookupLevel(entry.MoodLevel); ok {
		if entry.MoodEmoji == "" {
			entry.MoodEmoji = level.Emoji
		}
		if entry.MoodLabel == "" {
			entry.MoodLabel = level.Label
		}
	}

	updated := make([]models.MoodEntry, 0, len(entries)+1)
	updated = append(updated, entry)
	updated = append(updated, entries...)

	if err := s.store.SaveAll(ctx, updated); err != nil {
		return models.MoodEntry{}, fmt.Errorf("Failure to save entries in %s: %w", op, err)
	}

	s.lastID = entry.ID
	if s.metrics != nil {
		s.metrics.EntriesCreated.Inc()
	}
	s.log.WithFields(logrus.Fields{"op": op, "id": entry.ID, "type": entry.Type}).Debug("mood entry created")

	return entry, nil
}

// nextID starts from the creation instant in milliseconds and bumps it until it
// is unused and above every id this service handed out before.
func (s *MoodService) nextID(now time.Time, entries []models.MoodEntry) int64 {
	taken := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		taken[e.ID] = struct{}{}
	}

	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for {
		if _, ok := taken[id]; !ok {
			return id
		}
		id++
	}
}

// DeleteEntry removes the entry with the given id and returns it.
// When no entry matches, ErrNotFound is returned and nothing is written.
func (s *MoodService) DeleteEntry(ctx context.Context, id int64) (models.MoodEntry, error) {
	op := "internal/usecases/moods.go DeleteEntry"

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return models.MoodEntry{}, fmt.Errorf("Failure to load entries in %s: %w", op, err)
	}

	idx := -1
	for i, e := range entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return models.MoodEntry{}, ErrNotFound
	}

	deleted := entries[idx]
	remaining := make([]models.MoodEntry, 0, len(entries)-1)
	remaining = append(remaining, entries[:idx]...)
	remaining = append(remaining, entries[idx+1:]...)

	if err := s.store.SaveAll(ctx, remaining); err != nil {
		return models.MoodEntry{}, fmt.Errorf("Failure to save entries in %s: %w", op, err)
	}

	if s.metrics != nil {
		s.metrics.EntriesDeleted.Inc()
	}
	s.log.WithFields(logrus.Fields{"op": op, "id": id}).Debug("mood entry deleted")

	return deleted, nil
}

// Trend aggregates the stored entries for the period containing anchor.
func (s *MoodService) Trend(ctx context.Context, period models.Period, anchor time.Time) (models.Trend, error) {
	op := "internal/usecases/moods.go Trend"

	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return models.Trend{}, fmt.Errorf("Failure to load entries in %s: %w", op, err)
	}

	return BuildTrend(entries, period, anchor, s.loc)
}
