package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rumos-automatic/tasktimeflow/internal/config"
	"github.com/rumos-automatic/tasktimeflow/internal/db"
	"github.com/rumos-automatic/tasktimeflow/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	repo, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = repo.Close() }()

	return ui.NewApp(repo, cfg).Execute()
}
