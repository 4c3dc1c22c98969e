package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"

	"scratch_lottery/internal/db"
	"scratch_lottery/internal/logger"
)

// Lists the migration files; with -apply runs them in lexical order,
// each inside its own transaction.
func main() {
	apply := flag.Bool("apply", false, "apply migrations instead of listing them")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	migDir := filepath.Join("internal", "migrations")
	entries, err := os.ReadDir(migDir)
	if err != nil {
		logger.Fatal("failed to read migrations dir", "dir", migDir, "error", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	ctx := context.Background()
	for _, name := range names {
		if !*apply {
			logger.Info("pending migration", "file", name)
			continue
		}

		sql, err := os.ReadFile(filepath.Join(migDir, name))
		if err != nil {
			logger.Fatal("failed to read migration", "file", name, "error", err)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			logger.Fatal("failed to begin transaction", "file", name, "error", err)
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			logger.Fatal("migration failed", "file", name, "error", err)
		}
		if err := tx.Commit(ctx); err != nil {
			logger.Fatal("failed to commit migration", "file", name, "error", err)
		}

		logger.Info("migration applied", "file", name)
	}
}
