package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"moodtrack/internal/models"
	"moodtrack/internal/usecases"
)

// maxBodyBytes bounds a create payload; real entries are a few hundred bytes.
const maxBodyBytes = 64 << 10

type MoodHandler struct {
	service *usecases.MoodService
	log     *logrus.Logger
}

func NewMoodHandler(s *usecases.MoodService, log *logrus.Logger) *MoodHandler {
	return &MoodHandler{service: s, log: log}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (mh *MoodHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any, op string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		mh.log.WithFields(logrus.Fields{"op": op, "request_id": RequestID(r.Context())}).
			WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps service errors onto status codes. Anything that is not a
// validation or not-found error is reported as a generic 500 and logged.
func (mh *MoodHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback, op string) {
	var verr *usecases.ValidationError
	switch {
	case errors.As(err, &verr):
		mh.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: verr.Error()}, op)
	case errors.Is(err, usecases.ErrNotFound):
		mh.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Mood entry not found"}, op)
	default:
		mh.log.WithFields(logrus.Fields{"op": op, "request_id": RequestID(r.Context())}).
			WithError(err).Error(fallback)
		mh.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: fallback}, op)
	}
}

func (mh *MoodHandler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/moods.go HandleGetEntries"

	entries, err := mh.service.ListEntries(r.Context())
	if err != nil {
		mh.writeError(w, r, err, "Failed to fetch mood entries", op)
		return
	}

	mh.writeJSON(w, r, http.StatusOK, entries, op)
}

func (mh *MoodHandler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/moods.go HandleCreateEntry"

	var req models.CreateMoodRequest
	if err := decodeBody(w, r, &req); err != nil {
		mh.log.WithFields(logrus.Fields{"op": op, "request_id": RequestID(r.Context())}).
			WithError(err).Info("Couldnt decode json")

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			mh.writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"}, op)
			return
		}
		mh.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"}, op)
		return
	}

	entry, err := mh.service.CreateEntry(r.Context(), req)
	if err != nil {
		mh.writeError(w, r, err, "Failed to create mood entry", op)
		return
	}

	mh.writeJSON(w, r, http.StatusCreated, entry, op)
}

// decodeBody reads exactly one JSON value from a size-limited body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after the JSON body")
	}
	return nil
}

func (mh *MoodHandler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/moods.go HandleDeleteEntry"

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		// The route only matches digits, so this is an id that overflows int64.
		mh.writeError(w, r, usecases.ErrNotFound, "", op)
		return
	}

	deleted, err := mh.service.DeleteEntry(r.Context(), id)
	if err != nil {
		mh.writeError(w, r, err, "Failed to delete mood entry", op)
		return
	}

	mh.writeJSON(w, r, http.StatusOK, deleted, op)
}

// HandleGetTrend serves GET /moods/trends?period=week|month&date=YYYY-MM-DD.
// Without a date the service's current day is used.
func (mh *MoodHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/moods.go HandleGetTrend"

	period, err := usecases.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		mh.writeError(w, r, err, "", op)
		return
	}

	anchor := mh.service.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		anchor, err = usecases.ParseDay(dateStr, mh.service.Location())
		if err != nil {
			mh.writeError(w, r, err, "", op)
			return
		}
	}

	trend, err := mh.service.Trend(r.Context(), period, anchor)
	if err != nil {
		mh.writeError(w, r, err, "Failed to build mood trend", op)
		return
	}

	mh.writeJSON(w, r, http.StatusOK, trend, op)
}

func (mh *MoodHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	mh.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"}, "internal/handlers/moods.go HandleHealth")
}
