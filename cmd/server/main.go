// Package main is the entry point for the minisocial API server.
//
// MAIN PACKAGE IN GO:
// main should stay minimal. Its job is to:
// 1. Read configuration (.env file, then environment variables)
// 2. Create the logger
// 3. Build and start the server
//
// All actual logic lives in internal/ packages, which keeps them testable.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sakif/minisocial/internal/config"
	"github.com/sakif/minisocial/internal/server"
)

func main() {
	// === 1. LOAD .env ===
	// godotenv copies KEY=VALUE lines into the process environment without
	// overriding variables that are already set. A missing file is normal
	// in production.
	envErr := godotenv.Load()

	// === 2. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 3. SET UP LOGGING ===
	// Log levels (from least to most severe): Debug → Info → Warn → Error.
	// LOG_LEVEL picks the floor.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if envErr != nil {
		if errors.Is(envErr, fs.ErrNotExist) {
			logger.Debug("no .env file found, using environment only")
		} else {
			logger.Warn("could not read .env file", slog.String("error", envErr.Error()))
		}
	}

	if cfg.InsecureSecret {
		logger.Warn("JWT_SECRET not set, using the development secret; tokens are forgeable")
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
