// Command moodtrack runs the mood tracking API and offers a small CLI client for it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"moodtrack/internal/config"
	"moodtrack/internal/logging"
	"moodtrack/internal/storage"
)

type app struct {
	cfg *config.Config
	log *logrus.Logger

	// openStore defaults to storage.Open.
	openStore func(ctx context.Context, cfg *config.Config) (storage.MoodStore, error)

	backend   string
	addr      string
	serverURL string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{openStore: storage.Open}

	cmd := &cobra.Command{
		Use:           "moodtrack",
		Short:         "Personal mood tracker: API server and command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVar(&a.backend, "backend", "", "storage backend: file, redis, postgres or memory (overrides MOODTRACK_BACKEND)")
	cmd.PersistentFlags().StringVar(&a.addr, "addr", "", "listen address (overrides MOODTRACK_HTTP_ADDR)")
	cmd.PersistentFlags().StringVar(&a.serverURL, "server", "", "API base url for client commands (overrides MOODTRACK_SERVER_URL)")

	cmd.AddCommand(
		serveCmd(a),
		listCmd(a),
		addCmd(a),
		deleteCmd(a),
		trendCmd(a),
	)

	return cmd
}

func (a *app) load() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if a.addr != "" {
		cfg.HTTPAddr = a.addr
	}
	if a.serverURL != "" {
		cfg.ServerURL = a.serverURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}
