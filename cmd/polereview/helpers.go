package main

import (
	"log/slog"

	"polereview/internal/config"
	"polereview/internal/logging"
)

// cliLogger builds a stderr console logger for interactive commands so log
// lines never mix into table output on stdout.
func cliLogger(cfg *config.Config) *slog.Logger {
	level := "warn"
	if cfg != nil && cfg.Logging.Level != "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
