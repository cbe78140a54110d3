package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"portfolio/pkg/auth"
	"portfolio/pkg/clock"
	"portfolio/pkg/config"
	"portfolio/pkg/content"
	"portfolio/pkg/files"
	"portfolio/pkg/ledger"
	"portfolio/pkg/logging"
	"portfolio/pkg/services"
)

// app holds the components every command is built from.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	clock   clock.Clock
	content *content.Store
	files   files.Store
	ledger  *ledger.Ledger
	svc     *services.Service
}

// newApp wires the stores, the ledger and the service from cfg.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.New(os.Stderr, cfg.LogLevel)
	clk := clock.Real{}

	store, err := files.NewStoreFromConfig(ctx, cfg, files.NewNamer())
	if err != nil {
		return nil, fmt.Errorf("creating file store: %w", err)
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("opening upload ledger: %w", err)
	}

	contentStore := content.NewStore(cfg.ContentPath, clk, cfg.CacheTTL, logging.Component(logger, "content"))
	svc := services.NewService(services.Options{
		Content:  contentStore,
		Files:    store,
		Ledger:   led,
		Clock:    clk,
		CacheTTL: cfg.CacheTTL,
		Logger:   logging.Component(logger, "service"),
	})

	return &app{
		cfg:     cfg,
		log:     logger,
		clock:   clk,
		content: contentStore,
		files:   store,
		ledger:  led,
		svc:     svc,
	}, nil
}

func (a *app) newAuth() *auth.Service {
	return auth.NewService(a.cfg.AdminUsername, a.cfg.AdminPassword, a.cfg.JWTSecret, a.cfg.TokenTTL, a.clock)
}

// Close releases the ledger and any cloud client.
func (a *app) Close() {
	if err := a.ledger.Close(); err != nil {
		a.log.Warn("error closing ledger", "error", err)
	}
	closeStore(a.files)
}

func closeStore(s files.Store) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}

// loadApp is LoadConfig followed by newApp.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newApp(ctx, cfg)
}
