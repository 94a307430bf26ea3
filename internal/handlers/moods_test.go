package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodtrack/internal/logging"
	"moodtrack/internal/metrics"
	"moodtrack/internal/models"
	"moodtrack/internal/storage"
	"moodtrack/internal/usecases"
)

// brokenStore fails every load and save.
type brokenStore struct{}

func (brokenStore) LoadAll(context.Context) ([]models.MoodEntry, error) {
	return nil, fmt.Errorf("%w: connection refused", storage.ErrStorageUnavailable)
}

func (brokenStore) SaveAll(context.Context, []models.MoodEntry) error {
	return fmt.Errorf("%w: connection refused", storage.ErrStorageUnavailable)
}

func (brokenStore) Close() error { return nil }

type testServer struct {
	router  http.Handler
	metrics *metrics.Metrics
}

var now = time.Date(2025, 1, 22, 10, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, store storage.MoodStore) *testServer {
	t.Helper()
	log := logging.Discard()
	m := metrics.New()
	svc := usecases.NewMoodService(store, log,
		usecases.WithClock(func() time.Time { return now }),
		usecases.WithLocation(time.UTC),
		usecases.WithMetrics(m),
	)
	return &testServer{router: NewRouter(NewMoodHandler(svc, log), m, log), metrics: m}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seed() []models.MoodEntry {
	return []models.MoodEntry{
		{ID: 1, Type: "daily", MoodLevel: 1, Date: "2025-01-20", Time: "09:00", Timestamp: now.Add(-48 * time.Hour)},
		{ID: 2, Type: "daily", MoodLevel: 2, Date: "2025-01-21", Time: "09:00", Timestamp: now.Add(-24 * time.Hour)},
		{ID: 3, Type: "workout", MoodLevel: 5, Date: "2025-01-22", Time: "18:00", Timestamp: now},
	}
}

func TestGetMoods_EmptyIsArray(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage())

	rec := ts.do(t, http.MethodGet, "/moods", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestPostMoods_CreatesEntry(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage())

	rec := ts.do(t, http.MethodPost, "/moods", `{"type":"daily","moodLevel":3,"date":"2025-01-20","time":"09:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[models.MoodEntry](t, rec)
	assert.Equal(t, now.UnixMilli(), created.ID)
	assert.Equal(t, 3, created.MoodLevel)
	assert.Equal(t, now, created.Timestamp)

	list := decode[[]models.MoodEntry](t, ts.do(t, http.MethodGet, "/moods", ""))
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])
}

func TestPostMoods_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `{"type":`, wantErr: "Invalid JSON body"},
		{name: "level is not a number", body: `{"type":"daily","moodLevel":"3","date":"2025-01-20","time":"09:00"}`, wantErr: "Invalid JSON body"},
		{name: "missing level", body: `{"type":"daily","date":"2025-01-20","time":"09:00"}`, wantErr: "missing required fields: moodLevel"},
		{name: "missing type and time", body: `{"moodLevel":0,"date":"2025-01-20"}`, wantErr: "missing required fields: type, time"},
		{name: "trailing garbage", body: `{"type":"daily","moodLevel":3,"date":"2025-01-20","time":"09:00"} trailing`, wantErr: "Invalid JSON body"},
		{name: "two objects", body: `{"type":"daily","moodLevel":3,"date":"2025-01-20","time":"09:00"}{"type":"daily"}`, wantErr: "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage(seed()...)
			ts := newTestServer(t, store)

			rec := ts.do(t, http.MethodPost, "/moods", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantErr, decode[errorResponse](t, rec).Error)

			entries, err := store.LoadAll(context.Background())
			require.NoError(t, err)
			assert.Equal(t, seed(), entries)
		})
	}
}

func TestPostMoods_TrailingWhitespaceIsFine(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage())

	rec := ts.do(t, http.MethodPost, "/moods", "{\"type\":\"daily\",\"moodLevel\":3,\"date\":\"2025-01-20\",\"time\":\"09:00\"}\n\n")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestPostMoods_BodyTooLarge(t *testing.T) {
	store := storage.NewMemoryStorage()
	ts := newTestServer(t, store)

	body := `{"type":"daily","moodLevel":3,"date":"2025-01-20","time":"09:00","moodLabel":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := ts.do(t, http.MethodPost, "/moods", body)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request body too large", decode[errorResponse](t, rec).Error)

	entries, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteMood(t *testing.T) {
	store := storage.NewMemoryStorage(seed()...)
	ts := newTestServer(t, store)

	rec := ts.do(t, http.MethodDelete, "/moods/2", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, seed()[1], decode[models.MoodEntry](t, rec))

	list := decode[[]models.MoodEntry](t, ts.do(t, http.MethodGet, "/moods", ""))
	assert.Equal(t, []models.MoodEntry{seed()[0], seed()[2]}, list)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.EntriesDeleted))
}

func TestDeleteMood_NotFound(t *testing.T) {
	store := storage.NewMemoryStorage(seed()...)
	ts := newTestServer(t, store)

	for _, path := range []string{"/moods/42", "/moods/abc", "/moods/99999999999999999999"} {
		rec := ts.do(t, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
	}

	entries, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seed(), entries)
}

func TestStorageFailures_Return500(t *testing.T) {
	ts := newTestServer(t, brokenStore{})

	tests := []struct {
		method, path, body, want string
	}{
		{http.MethodGet, "/moods", "", "Failed to fetch mood entries"},
		{http.MethodPost, "/moods", `{"type":"daily","moodLevel":3,"date":"2025-01-20","time":"09:00"}`, "Failed to create mood entry"},
		{http.MethodDelete, "/moods/1", "", "Failed to delete mood entry"},
		{http.MethodGet, "/moods/trends", "", "Failed to build mood trend"},
	}

	for _, tt := range tests {
		rec := ts.do(t, tt.method, tt.path, tt.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, tt.path)
		assert.Equal(t, tt.want, decode[errorResponse](t, rec).Error)
	}
}

func TestGetTrend(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage(seed()...))

	rec := ts.do(t, http.MethodGet, "/moods/trends?period=week&date=2025-01-22", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	trend := decode[models.Trend](t, rec)
	assert.Equal(t, models.PeriodWeek, trend.Period)
	assert.Equal(t, "2025-01-20", trend.Start)
	require.Len(t, trend.Days, 7)
	assert.Equal(t, 1, *trend.Days[0].Values["daily"])
	assert.Equal(t, 5, *trend.Days[2].Values["workout"])
	assert.Nil(t, trend.Days[2].Values["daily"])

	rec = ts.do(t, http.MethodGet, "/moods/trends?period=year", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/moods/trends?date=22-01-2025", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrend_DefaultsToServiceClock(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage(seed()...))

	rec := ts.do(t, http.MethodGet, "/moods/trends", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	trend := decode[models.Trend](t, rec)
	assert.Equal(t, models.PeriodWeek, trend.Period)
	assert.Equal(t, "2025-01-20", trend.Start)
	assert.Equal(t, "2025-01-26", trend.End)
	assert.Equal(t, 5, *trend.Days[2].Values["workout"])

	rec = ts.do(t, http.MethodGet, "/moods/trends?period=month", "")
	require.Equal(t, http.StatusOK, rec.Code)
	trend = decode[models.Trend](t, rec)
	assert.Equal(t, "2025-01-01", trend.Start)
	assert.Equal(t, "2025-01-31", trend.End)
}

func TestRouter_FallbacksAndHealth(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage())

	rec := ts.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode[errorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodPut, "/moods", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestRouter_FallbacksRunMiddleware(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage())

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/nope", http.StatusNotFound},
		{http.MethodPut, "/moods", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/moods/abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
			assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues("unmatched", tt.method, fmt.Sprint(tt.status))))
		})
	}
}

func TestChain_RecoveryIsOutermost(t *testing.T) {
	m := metrics.New()
	h := chain(m, logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/moods", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, "Internal server error", decode[errorResponse](t, rec).Error)
}

func TestRequestID_Propagated(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage())

	req := httptest.NewRequest(http.MethodGet, "/moods", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStorage())

	ts.do(t, http.MethodGet, "/moods", "")
	ts.do(t, http.MethodDelete, "/moods/5", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues("/moods", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues("/moods/{id:[0-9]+}", "DELETE", "404")))

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moodtrack_http_requests_total")
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode[errorResponse](t, rec).Error)
}
