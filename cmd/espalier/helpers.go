package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
	"github.com/espalier-dev/espalier/pkg/registry"
)

func newLogger(cmd *cobra.Command, json bool) *slog.Logger {
	levelName, _ := cmd.Flags().GetString("log-level")
	level := slog.LevelInfo
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if json {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

func loadRegistry(cmd *cobra.Command) (*registry.Registry, *flowfile.Loader, error) {
	dir, _ := cmd.Flags().GetString("flows")
	loader := flowfile.New(dir)
	reg, err := registry.NewFromSource(cmd.Context(), loader)
	if err != nil {
		return nil, nil, err
	}
	return reg, loader, nil
}
