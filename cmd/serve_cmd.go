package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"portfolio/pkg/config"
	"portfolio/pkg/handlers"
	"portfolio/pkg/logging"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the portfolio pages, the uploads and the content API.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := LoadConfig()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			if err := cfg.RequireAuth(); err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := Serve(ctx, cfg); err != nil {
				log.Printf("Server error: %v", err)
				os.Exit(1)
			}
		},
	}
}

// Serve wires the application from cfg and serves it until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return serveWebsite(ctx, a)
}

// serveWebsite runs the web server until ctx is cancelled
func serveWebsite(ctx context.Context, a *app) error {
	go func() {
		if err := a.content.Watch(ctx); err != nil {
			a.log.Warn("content watcher stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr: a.cfg.ServerAddress(),
		Handler: handlers.NewRouter(handlers.Options{
			Service:        a.svc,
			Auth:           a.newAuth(),
			Logger:         logging.Component(a.log, "http"),
			ViewsDir:       a.cfg.ViewsDir,
			MaxUploadBytes: a.cfg.MaxUploadBytes,
			ProtectWrites:  a.cfg.ProtectWrites,
			CORSOrigin:     a.cfg.CORSOrigin,
			OrphanGrace:    a.cfg.OrphanGrace,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.cfg.PrintServerStartMessage()
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
