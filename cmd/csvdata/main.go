package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/csvdata/internal/cli"
	"github.com/JonMunkholm/csvdata/internal/config"
	"github.com/JonMunkholm/csvdata/internal/logging"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	envErr := godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if envErr == nil {
		slog.Debug("loaded .env file (overwriting existing env vars)")
	}

	os.Exit(cli.Execute(context.Background(), cfg, os.Args[1:]))
}
