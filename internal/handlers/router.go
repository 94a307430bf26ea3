package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"moodtrack/internal/metrics"
)

// chain orders the middleware outermost first. mux only runs router.Use
// middleware for matched routes, so the fallback handlers are wrapped explicitly.
func chain(m *metrics.Metrics, log *logrus.Logger) mux.MiddlewareFunc {
	recovery := RecoveryMiddleware(log)
	access := LoggingMiddleware(log)
	count := MetricsMiddleware(m)

	return func(next http.Handler) http.Handler {
		return recovery(RequestIDMiddleware(access(count(next))))
	}
}

func NewRouter(mh *MoodHandler, m *metrics.Metrics, log *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	wrap := chain(m, log)
	router.Use(wrap)

	router.HandleFunc("/moods", mh.HandleGetEntries).Methods(http.MethodGet)
	router.HandleFunc("/moods", mh.HandleCreateEntry).Methods(http.MethodPost)
	router.HandleFunc("/moods/trends", mh.HandleGetTrend).Methods(http.MethodGet)
	router.HandleFunc("/moods/{id:[0-9]+}", mh.HandleDeleteEntry).Methods(http.MethodDelete)
	router.HandleFunc("/healthz", mh.HandleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.NotFoundHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mh.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Not found"}, "internal/handlers/router.go NotFound")
	}))
	router.MethodNotAllowedHandler = wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mh.writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"}, "internal/handlers/router.go MethodNotAllowed")
	}))

	return router
}
