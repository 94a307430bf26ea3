package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"moodtrack/internal/handlers"
	"moodtrack/internal/metrics"
	"moodtrack/internal/storage"
	"moodtrack/internal/usecases"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	m := metrics.New()

	open := a.openStore
	if open == nil {
		open = storage.Open
	}

	store, err := open(ctx, a.cfg)
	if err != nil {
		return err
	}
	store = storage.Instrument(store, a.cfg.Backend, m)
	defer func() {
		if err := store.Close(); err != nil {
			a.log.WithError(err).Warn("closing store")
		}
	}()

	a.log.WithField("backend", a.cfg.Backend).Info("storage ready")

	svc := usecases.NewMoodService(store, a.log,
		usecases.WithLocation(loc),
		usecases.WithMetrics(m),
	)
	router := handlers.NewRouter(handlers.NewMoodHandler(svc, a.log), m, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.WithFields(logrus.Fields{"timeout": a.cfg.ShutdownTimeout.String()}).Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
