package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"prompt-keeper/api"
	"prompt-keeper/config"
	"prompt-keeper/library"
	"prompt-keeper/logger"
	"prompt-keeper/session"
	"prompt-keeper/storage"
	"prompt-keeper/watch"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the prompt-keeper HTTP API on the configured local backend.

The server provides:
  - /api/folders, /api/prompts, /api/presets - library CRUD
  - /api/prompts/{id}/resolve                - fill [variables]
  - /api/prompts/{id}/ws                     - live edit with autosave
  - /api/events                              - change feed

Examples:
  prompt-keeper serve                   # Start on 127.0.0.1:3001
  prompt-keeper serve --port 8080       # Start on a custom port
  prompt-keeper serve --host 0.0.0.0    # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		return serve(cmd.Context(), cfg, log)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind to (overrides config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

// serve runs the API until ctx is cancelled, then saves pending drafts.
func serve(ctx context.Context, c config.Config, log *logger.Logger) error {
	if c.Backend == "remote" {
		return errors.New("serve needs a local backend (file or sqlite)")
	}

	store, err := storage.Open(storage.Options{
		Backend: c.Backend,
		DataDir: c.DataDir,
		Driver:  c.SQLiteDriver,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("storage close error", "error", err)
		}
	}()

	svc := library.NewService(store)
	hub := watch.NewHub()
	svc.SetNotifier(hub)

	if fs, ok := store.(*storage.FileStore); ok && c.Watch {
		w, err := watch.NewWatcher(fs, hub, log)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
		log.Info("watching data files", "dir", fs.Dir())
	}

	sessions := session.NewManager(svc.UpdatePrompt, c.AutosaveDelay, log)

	dataDir, err := filepath.Abs(c.DataDir)
	if err != nil {
		dataDir = c.DataDir
	}
	handler := api.RegisterRoutes(svc, sessions, hub, api.Info{DataDir: dataDir, Backend: c.Backend}, log)

	srv := &http.Server{
		Addr:              c.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "addr", srv.Addr, "backend", c.Backend, "data_dir", dataDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			sessions.Shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}
	// Hijacked websocket connections outlive Shutdown; save their drafts.
	sessions.Shutdown()
	log.Info("server stopped")
	return nil
}
