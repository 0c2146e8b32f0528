package main

import (
	"context"
	"log/slog"
	"os"

	"go-survey-admin/internal/app"
	"go-survey-admin/internal/logger"
)

func main() {
	// Replaced once the configured logger is built.
	slog.SetDefault(slog.New(logger.NewPrettyHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	application, err := app.New(context.Background())
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
