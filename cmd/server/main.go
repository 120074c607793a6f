// Command server runs the snippet activity HTTP service.
//
// Configuration comes from config.yaml, .env and SNIPPET_* variables; see
// internal/config. The only required setting is SNIPPET_AUTH_JWT_SECRET, the
// secret shared with the host platform that signs user tokens.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/sakif/snippet-activity/internal/config"
	"github.com/sakif/snippet-activity/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
