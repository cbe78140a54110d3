package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"portfolio/cmd"
	"portfolio/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireAuth(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	if err := cmd.Serve(ctx, cfg); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
