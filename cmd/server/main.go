// Package main is the entry point for the FocusBoard server.
//
// MAIN PACKAGE IN GO:
// main stays minimal. Its job is to:
//  1. Read configuration from the environment
//  2. Create the logger
//  3. Start the server
//
// All actual logic lives in internal/server, internal/service and friends.
//
// ENVIRONMENT:
//
//	PORT                HTTP port (default 8080)
//	DB_PATH             SQLite file (default data/focusboard.db)
//	JWT_SECRET          session cookie signing key, 16+ characters (required)
//	LOG_LEVEL           debug | info | warn | error (default info)
//	HASH_PASSWORDS      bcrypt stored account passwords (default false)
//	LEGACY_EMAIL_MATCH  case-sensitive duplicate email check (default false)
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/focusboard/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	// LOG_LEVEL is parsed by slog itself, so "debug", "INFO", "warn+2" all work.
	level := slog.LevelInfo
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL %q: %v\n", raw, err)
			os.Exit(1)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	// === 2. READ CONFIGURATION ===
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the data directory exists (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	if !cfg.HashPasswords {
		logger.Warn("HASH_PASSWORDS is off: account passwords are stored as typed")
	}

	// === 3. CREATE AND START THE SERVER ===
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

// loadConfig reads server.Config from the environment.
func loadConfig() (server.Config, error) {
	cfg := server.Config{
		Port:      8080,
		DBPath:    "data/focusboard.db",
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid PORT value %q", raw)
		}
		cfg.Port = port
	}

	if raw := os.Getenv("DB_PATH"); raw != "" {
		cfg.DBPath = raw
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required (try: JWT_SECRET=$(openssl rand -hex 32))")
	}

	var err error
	if cfg.HashPasswords, err = envBool("HASH_PASSWORDS"); err != nil {
		return cfg, err
	}
	if cfg.LegacyEmailMatch, err = envBool("LEGACY_EMAIL_MATCH"); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// envBool reads a boolean variable; unset means false.
func envBool(name string) (bool, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q", name, raw)
	}
	return v, nil
}
