// Package main is the entry point for the age wisdom server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts in main() of the "main" package. Main stays
// minimal — its job is to:
// 1. Set up logging
// 2. Load configuration
// 3. Create and start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, ...). That separation keeps the app testable and the
// pieces reusable.
//
// WHY cmd/server/?
// The cmd/ directory is the Go convention for executable entry points. A
// project might grow several (cmd/server, cmd/migrate, ...), each with its
// own directory and main.go.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/age-wisdom/internal/config"
	"github.com/sakif/age-wisdom/internal/server"
)

func main() {
	// Structured text logs to stdout. Debug level locally; flip to Info in
	// production to cut noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Make sure the database directory exists before SQLite tries to create
	// the file inside it. MkdirAll is a no-op when it's already there.
	if dbDir := filepath.Dir(cfg.DBPath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until shutdown (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
